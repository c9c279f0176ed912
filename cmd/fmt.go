package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Print the Klog file in canonical form",
	Long: `fmt parses the Klog file and renders it again using the configured
indentation and should-total settings. With --write the file is replaced.`,
	Args: cobra.NoArgs,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the file")
}

func runFmt(cmd *cobra.Command, args []string) error {
	ws := openWorkspace()

	if fmtWrite {
		ws.save()
		fmt.Printf("Formatted %d records in %s\n", len(ws.records), ws.path)
		return nil
	}
	if len(ws.records) > 0 {
		fmt.Println(klog.RenderRecords(ws.records, ws.render))
	}
	return nil
}
