package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"violet-client/internal/model"
)

func (rt *runtime) uploadCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload --name NAME <file.pdf>...",
		Short: "Upload PDFs into a new collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			o := rt.orchestrator()

			files := make([]model.UploadFile, 0, len(args))
			for _, path := range args {
				files = append(files, model.LocalFile(path))
			}
			if err := o.OpenUpload(); err != nil {
				return err
			}
			if _, err := o.SelectFiles(files); err != nil {
				return err
			}
			if err := o.SetCollectionName(name); err != nil {
				return err
			}

			o.OnProgress(func(p int) {
				if p > 0 {
					fmt.Fprintf(rt.errOut, "uploading... %d%%\n", p)
				}
			})
			coll, err := o.SubmitUpload(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Collection %d: %s\n", coll.ID, coll.DisplayName())
			printInsights(rt, o.Snapshot().Insights)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "collection name")
	return cmd
}
