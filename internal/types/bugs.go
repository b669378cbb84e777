package types

// Bug is one entry of a UDD bug dump. The dump carries more fields;
// only the ones the release-critical filter needs are modeled.
type Bug struct {
	ID       int      `yaml:"id"`
	Source   string   `yaml:"source"`
	Severity Severity `yaml:"severity"`
	Title    string   `yaml:"title"`
}
