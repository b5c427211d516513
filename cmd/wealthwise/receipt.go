package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/domain"
)

const noReceiptMessage = "No receipt found for this transaction."

func newReceiptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "View, download or upload transaction receipts",
	}
	cmd.AddCommand(
		newReceiptViewCmd(a),
		newReceiptDownloadCmd(a),
		newReceiptUploadCmd(a),
	)
	return cmd
}

func newReceiptViewCmd(a *app) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "view <transaction-id>",
		Short: "Describe a receipt and optionally open it in a viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			id := domain.ID(args[0])
			r, err := a.client.ViewReceipt(cmd.Context(), id)
			if client.IsCode(err, client.CodeNotFound) {
				fmt.Fprintln(out, noReceiptMessage)
				return nil
			}
			if err != nil {
				return err
			}

			p := newPrinter(out)
			p.fields([][2]string{
				{"Type", r.ContentType},
				{"Size", humanize.Bytes(uint64(len(r.Data)))},
				{"Filename", orDash(r.Filename)},
			})
			if !open {
				return nil
			}
			path, err := writeReceipt(*r, id)
			if err != nil {
				return err
			}
			if err := a.openURL(path); err != nil {
				fmt.Fprintf(out, "Saved to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&open, "open", "o", false, "open the receipt in the default viewer")
	return cmd
}

func newReceiptDownloadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <transaction-id>",
		Short: "Save a receipt to a file",
		Long: "Save a receipt. Without --output the server's filename is used in the\n" +
			"current directory; --output - writes to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			id := domain.ID(args[0])
			if output == "-" {
				_, _, err := a.client.DownloadReceipt(cmd.Context(), id, cmd.OutOrStdout())
				return err
			}
			path, n, err := a.downloadReceipt(cmd.Context(), id, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, humanize.Bytes(uint64(n)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file")
	return cmd
}

func newReceiptUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <transaction-id> <file>",
		Short: "Attach a receipt file to a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			if err := a.uploadReceipt(cmd.Context(), domain.ID(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Receipt uploaded.")
			return nil
		},
	}
}

// downloadReceipt streams the receipt into a temp file beside the target and
// renames it once complete, so a failed download leaves nothing behind.
func (a *app) downloadReceipt(ctx context.Context, id domain.ID, target string) (string, int64, error) {
	dir := "."
	if target != "" {
		dir = filepath.Dir(target)
	}
	f, err := os.CreateTemp(dir, ".wealthwise-receipt-*")
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	tmp := f.Name()
	name, n, err := a.client.DownloadReceipt(ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp) //nolint:errcheck
		return "", 0, err
	}

	if target == "" {
		target = receiptFilename(name, id)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return "", 0, fmt.Errorf("save receipt: %w", err)
	}
	return target, n, nil
}

// receiptFilename keeps only the base of a server-provided name.
func receiptFilename(name string, id domain.ID) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" || strings.HasPrefix(name, ".") {
		return "receipt-" + id.String()
	}
	return name
}

func (a *app) uploadReceipt(ctx context.Context, id domain.ID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open receipt: %w", err)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("open receipt: %w", err)
	}
	if info.Size() > client.MaxReceiptSize {
		return goerrors.NewValidation(
			fmt.Sprintf("receipt is %s; the limit is %s", humanize.Bytes(uint64(info.Size())), humanize.Bytes(client.MaxReceiptSize)),
			goerrors.FieldError{Field: "receipt", Message: "too large"},
		).WithTextCode(client.CodeValidation)
	}
	return a.client.UploadReceipt(ctx, id, filepath.Base(path), f)
}

// writeReceipt stores r in the temp dir so an external viewer can open it.
func writeReceipt(r domain.Receipt, id domain.ID) (string, error) {
	ext := filepath.Ext(r.Filename)
	switch {
	case ext != "":
	case r.IsPDF():
		ext = ".pdf"
	case r.IsImage():
		ext = "." + strings.TrimPrefix(strings.SplitN(r.ContentType, ";", 2)[0], "image/")
	default:
		ext = ".bin"
	}
	f, err := os.CreateTemp("", "wealthwise-receipt-"+id.String()+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	if _, err := f.Write(r.Data); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return f.Name(), nil
}
