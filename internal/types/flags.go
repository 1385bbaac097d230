package types

// GlobalFlags holds the persistent flags shared by every command
type GlobalFlags struct {
	Config       string
	OutputFormat OutputFormat
	JSON         bool
	Quiet        bool
	Verbose      bool
	Debug        bool
	LogFile      string
	DryRun       bool
	NoColor      bool
}
