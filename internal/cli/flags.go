package cli

import "github.com/spf13/pflag"

// filterFlags holds the filter values shared by list and board.
type filterFlags struct {
	status   string
	priority string
	search   string
}

func (f *filterFlags) register(fs *pflag.FlagSet, withStatus bool) {
	if withStatus {
		fs.StringVarP(&f.status, "status", "s", "", "Filter by status (All, Open, In Progress, Resolved)")
	}
	fs.StringVarP(&f.priority, "priority", "p", "", "Filter by priority (All, Low, Medium, High)")
	fs.StringVarP(&f.search, "search", "q", "", "Case-insensitive title search")
}
