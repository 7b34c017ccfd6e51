package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/cell"
)

// AddOptions
type AddOptions struct {
	TypeString string
	After      string
}

func AddCellArgs(cmd *cobra.Command, o *AddOptions) {
	cmd.Flags().StringVarP(&o.TypeString, "type", "t", string(cell.Code),
		`Cell type, one of "code", "markdown" or "raw".`)
	cmd.Flags().StringVar(&o.After, "after", "",
		"Insert after this cell id instead of appending.")
}

func (o *AddOptions) GetType() (cell.Type, error) {
	return cell.ParseType(o.TypeString)
}
