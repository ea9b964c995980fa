package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/docs"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage shared documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents remembered on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		list, err := e.library.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		search, _ := cmd.Flags().GetString("search")
		list = docs.Search(list, search)
		if len(list) == 0 {
			fmt.Println("No documents.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for i := len(list) - 1; i >= 0; i-- {
			d := list[i]
			lock := ""
			if d.Protected() {
				lock = "yes"
			}
			rows = append(rows, []string{d.DocID, truncate(d.Title, 40), lock})
		}
		writeTable(cmd.OutOrStdout(), []string{"ID", "Title", "Protected"}, rows)
		return nil
	},
}

var docsNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create an empty document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docs.NewDocument(strings.Join(args, " "))
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.library.Put(cmd.Context(), doc); err != nil {
			return err
		}
		if err := e.docs.Save(cmd.Context(), doc); err != nil {
			return fmt.Errorf("saved on this device only: %w", err)
		}
		fmt.Printf("Created %s (%s)\n", doc.Title, doc.DocID)
		return nil
	},
}

var docsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a document as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		raw, _ := cmd.Flags().GetBool("html")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := e.docs.Fetch(cmd.Context(), args[0])
		if err != nil {
			local, lerr := e.library.Get(cmd.Context(), args[0])
			if lerr != nil {
				return err
			}
			e.logger.Warn("document store unreachable, using local copy", "doc", args[0], "error", err)
			doc = local
		}

		if err := docs.NewGate(doc).Unlock(password); err != nil {
			if errors.Is(err, docs.ErrPasswordRequired) {
				return fmt.Errorf("document %s is protected: pass --password", doc.DocID)
			}
			return err
		}
		if err := e.library.Put(cmd.Context(), doc); err != nil {
			return err
		}

		fmt.Printf("# %s (%s)\n\n", doc.Title, doc.DocID)
		if raw {
			fmt.Println(doc.Content)
		} else {
			fmt.Println(docs.PlainText(doc.Content))
		}
		return nil
	},
}

var docsShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Set or clear the share password and print the share text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := e.library.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, text, err := docs.Share(doc, password, docs.ShareLink(e.cfg.ShareBaseURL, doc.DocID))
		if err != nil {
			return err
		}
		if err := e.library.Put(cmd.Context(), doc); err != nil {
			return err
		}
		if err := e.docs.Save(cmd.Context(), doc); err != nil {
			return fmt.Errorf("save shared document: %w", err)
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	docsListCmd.Flags().StringP("search", "s", "", "Filter by title or id")
	docsShowCmd.Flags().String("password", "", "Password for a protected document")
	docsShowCmd.Flags().Bool("html", false, "Print the stored HTML")
	docsShareCmd.Flags().String("password", "", "Share password; empty removes protection")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsNewCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsShareCmd)
}
