package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/drivepool/pkg/commands/accounts"
	"github.com/arthur-debert/drivepool/pkg/commands/genconfig"
	"github.com/arthur-debert/drivepool/pkg/commands/remove"
	"github.com/arthur-debert/drivepool/pkg/commands/structure"
	"github.com/arthur-debert/drivepool/pkg/commands/upload"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/planner"
	"github.com/arthur-debert/drivepool/pkg/ui/styles"
)

// consoleRenderer writes the human layout, styled or plain
type consoleRenderer struct {
	w      io.Writer
	styled bool
	out    strings.Builder
}

var plainStyle = pterm.NewStyle()

func (r *consoleRenderer) paint(style, s string) string {
	if !r.styled {
		return s
	}
	return styles.Get(style).Render(s)
}

func (r *consoleRenderer) line(format string, args ...interface{}) {
	fmt.Fprintf(&r.out, format, args...)
	r.out.WriteString("\n")
}

func (r *consoleRenderer) header(title string, dryRun bool) {
	if dryRun {
		title += " " + r.paint("DryRun", "(dry run)")
	}
	r.line("%s", r.paint("Header", title))
	if !r.styled {
		r.out.WriteString("\n")
	}
}

func (r *consoleRenderer) flush() error {
	_, err := io.WriteString(r.w, r.out.String())
	r.out.Reset()
	return err
}

func size(n int64) string { return config.HumanSize(n) }

func (r *consoleRenderer) Render(result interface{}) error {
	var err error
	switch v := result.(type) {
	case *upload.Result:
		err = r.upload(v)
	case *remove.Result:
		r.remove(v)
	case *structure.Result:
		err = r.structure(v)
	case *accounts.Result:
		err = r.accounts(v)
	case *genconfig.Result:
		r.genconfig(v)
	default:
		r.line("%v", v)
	}
	if err != nil {
		return err
	}
	return r.flush()
}

func (r *consoleRenderer) RenderError(err error) error {
	r.line("%s %s", r.paint("Error", "Error:"), err.Error())
	return r.flush()
}

func (r *consoleRenderer) RenderMessage(msg string) error {
	r.line("%s", msg)
	return r.flush()
}

func (r *consoleRenderer) directives(lines []string) {
	if len(lines) == 0 {
		return
	}
	r.out.WriteString("\n")
	r.line("Directives:")
	for _, l := range lines {
		r.line("%s", r.paint("Command", l))
	}
}

func (r *consoleRenderer) archives(ledgerBackup, runBackup string) {
	if ledgerBackup == "" && runBackup == "" {
		return
	}
	r.out.WriteString("\n")
	if ledgerBackup != "" {
		r.line("%s", r.paint("Muted", "Previous ledger: "+ledgerBackup))
	}
	if runBackup != "" {
		r.line("%s", r.paint("Muted", "Run archive:     "+runBackup))
	}
}

func (r *consoleRenderer) upload(res *upload.Result) error {
	rep := res.Report
	r.header("Upload", rep.DryRun)

	for _, id := range rep.NewAccounts {
		r.line("%s new account %s", r.paint("Success", "+"), r.paint("Account", id))
	}

	s := rep.Summary
	r.line("Placed %d file(s), %s. Skipped %d. Failed %d.", s.Placed, size(s.PlacedBytes), s.Skipped, s.Failed)
	if !rep.Changed() && s.Failed == 0 {
		r.line("%s", r.paint("Muted", "Nothing to upload: every file is already placed."))
	}

	if len(res.Loads) > 0 {
		data := pterm.TableData{{"Account", "Files", "Size"}}
		for _, load := range res.Loads {
			data = append(data, []string{load.AccountID, fmt.Sprint(load.Files), size(load.Bytes)})
		}
		if err := r.table(data); err != nil {
			return err
		}
	}

	if len(rep.Outcomes) > 0 {
		r.out.WriteString("\n")
		for _, o := range rep.Outcomes {
			r.outcome(o)
		}
	}

	r.directives(rep.Lines)
	r.archives(rep.LedgerBackup, rep.RunBackup)
	return nil
}

// outcome prints one file's fate: status, destination path, then the
// account or the failure reason
func (r *consoleRenderer) outcome(o planner.Outcome) {
	mark, style := "+", "Success"
	switch {
	case o.Status == planner.StatusSkipped:
		mark, style = "=", "Muted"
	case o.Status.Failed():
		mark, style = "✗", "Error"
	}

	detail := r.paint("Account", o.AccountID)
	if o.Status.Failed() {
		detail = string(o.Status)
		if o.Err != nil {
			detail = o.Err.Error()
		}
	}
	r.line("%s %-11s %s %s", r.paint(style, mark), o.Status, r.paint("Path", o.Descriptor.DestinationPathWithName), detail)
}

func (r *consoleRenderer) remove(res *remove.Result) {
	rep := res.Report
	r.header("Remove", rep != nil && rep.DryRun)

	if res.Nothing {
		r.line("%s", r.paint("Warning", "Nothing is placed under that prefix."))
		if rep != nil {
			r.archives("", rep.RunBackup)
		}
		return
	}
	r.line("Released %d file(s), %s, from %d account(s).", rep.Files(), size(rep.Bytes()), len(rep.Batches))
	for _, b := range rep.Batches {
		r.line("  %s %d file(s), %s", r.paint("Account", b.AccountID), len(b.Paths), size(b.Bytes))
	}
	r.directives(rep.Lines)
	r.archives(rep.LedgerBackup, rep.RunBackup)
}

func (r *consoleRenderer) structure(res *structure.Result) error {
	r.header("Structure", false)

	if res.Root.Files == 0 {
		r.line("%s", r.paint("Muted", "No placed files."))
		return nil
	}

	root := r.treeNode(res.Root)
	if res.Prefix != "" {
		root.Text = fmt.Sprintf("%s %s", r.paint("Path", res.Prefix+"*"), r.paint("Size", fmt.Sprintf("%d file(s), %s", res.Root.Files, size(res.Root.Bytes))))
	}

	printer := pterm.DefaultTree.WithRoot(root)
	if !r.styled {
		printer = printer.WithTreeStyle(plainStyle).WithTextStyle(plainStyle)
	}
	out, err := printer.Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render tree")
	}
	r.out.WriteString(out)
	r.line("Accounts: %s", strings.Join(res.Accounts, ", "))
	return nil
}

func (r *consoleRenderer) treeNode(n *structure.Node) pterm.TreeNode {
	var text string
	switch {
	case n.IsFile():
		text = fmt.Sprintf("%s %s %s", n.Name, r.paint("Size", size(n.Bytes)), r.paint("Account", "["+n.AccountID+"]"))
	default:
		text = fmt.Sprintf("%s %s", r.paint("Path", n.Name+"/"), r.paint("Size", fmt.Sprintf("%d file(s), %s", n.Files, size(n.Bytes))))
		if n.Truncated {
			text += " …"
		}
	}
	node := pterm.TreeNode{Text: text}
	for _, c := range n.Children {
		node.Children = append(node.Children, r.treeNode(c))
	}
	return node
}

func (r *consoleRenderer) accounts(res *accounts.Result) error {
	r.header("Accounts", false)

	if len(res.Rows) == 0 {
		r.line("%s", r.paint("Warning", "No accounts known. Add credential files to the accounts directory or set accounts.static."))
	} else {
		data := pterm.TableData{{"Account", "Capacity", "Used", "Remaining", "Used %", "Files"}}
		rows := make([]accounts.Row, 0, len(res.Rows)+1)
		rows = append(rows, res.Rows...)
		rows = append(rows, res.Total)
		for _, row := range rows {
			id := row.ID
			if row.New {
				id += " (new)"
			}
			data = append(data, []string{
				id,
				size(row.Capacity),
				size(row.Used),
				size(row.Remaining),
				fmt.Sprintf("%.1f", row.Percent()),
				fmt.Sprint(row.Files),
			})
		}
		if err := r.table(data); err != nil {
			return err
		}
	}

	if len(res.Problems) == 0 {
		r.line("%s", r.paint("Success", "Ledger is consistent."))
		return nil
	}
	r.line("%s", r.paint("Error", fmt.Sprintf("Ledger has %d problem(s):", len(res.Problems))))
	for _, p := range res.Problems {
		r.line("  - %s", p)
	}
	return nil
}

func (r *consoleRenderer) genconfig(res *genconfig.Result) {
	if res.FileWritten != "" {
		r.line("%s %s", r.paint("Success", "Wrote"), res.FileWritten)
		return
	}
	r.out.WriteString(res.Content)
	if !strings.HasSuffix(res.Content, "\n") {
		r.out.WriteString("\n")
	}
}

func (r *consoleRenderer) table(data pterm.TableData) error {
	printer := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !r.styled {
		printer = printer.WithStyle(plainStyle).WithHeaderStyle(plainStyle).WithSeparatorStyle(plainStyle)
	}
	out, err := printer.Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render table")
	}
	r.out.WriteString(out)
	r.out.WriteString("\n")
	return nil
}
