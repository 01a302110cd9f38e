package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/internal/render"
	"github.com/spf13/cobra"
)

var (
	applyDoc         string
	applyInstruction string
	applyRender      bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Preview an update instruction against a post document",
	Long: `Apply reads a post document and an update instruction, both JSON, and
prints the updated document (or the rendered post file with --render).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc mf2.Document
		if err := readJSON(applyDoc, &doc); err != nil {
			return err
		}
		var ins micropub.Instruction
		if err := readJSON(applyInstruction, &ins); err != nil {
			return err
		}
		updated, err := micropub.Apply(&doc, &ins)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if applyRender {
			b, err := render.Post(updated)
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(updated)
	},
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func init() {
	applyCmd.Flags().StringVar(&applyDoc, "doc", "", "post document JSON file")
	applyCmd.Flags().StringVar(&applyInstruction, "instruction", "", "update instruction JSON file")
	applyCmd.Flags().BoolVar(&applyRender, "render", false, "print the rendered post file instead of JSON")
	_ = applyCmd.MarkFlagRequired("doc")
	_ = applyCmd.MarkFlagRequired("instruction")
	rootCmd.AddCommand(applyCmd)
}
