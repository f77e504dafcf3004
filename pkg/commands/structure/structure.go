package structure

import (
	"sort"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
)

// StructureOptions holds options for the structure command
type StructureOptions struct {
	Engine *core.Engine
	// Prefix limits the view to placed paths starting with it
	Prefix string
	// Depth limits how many directory levels are expanded; 0 is unlimited
	Depth int
}

// Node is a directory or a placed file
type Node struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	// AccountID is set on files only
	AccountID string `json:"account_id,omitempty"`
	// Files and Bytes aggregate everything under a directory
	Files    int     `json:"files"`
	Bytes    int64   `json:"bytes"`
	Children []*Node `json:"children,omitempty"`
	// Truncated is set on directories cut off by Depth
	Truncated bool `json:"truncated,omitempty"`
}

// IsFile reports whether the node is a placed file
func (n *Node) IsFile() bool { return n.AccountID != "" }

// Result is the tree of placed destination paths
type Result struct {
	Prefix string `json:"prefix"`
	Root   *Node  `json:"root"`
	// Accounts lists the accounts holding at least one shown file
	Accounts []string `json:"accounts"`
}

// Structure builds the tree of everything the ledger has placed
func Structure(opts StructureOptions) (*Result, error) {
	logger := logging.GetLogger("commands.structure")

	if opts.Engine == nil {
		return nil, errors.New(errors.ErrInternal, "structure needs an engine")
	}
	if opts.Depth < 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "depth must not be negative, got %d", opts.Depth)
	}

	l, _, err := opts.Engine.Snapshot()
	if err != nil {
		return nil, err
	}

	root := &Node{Name: "/"}
	holders := map[string]bool{}
	for _, e := range l.Entries() {
		if !strings.HasPrefix(e.Path, opts.Prefix) {
			continue
		}
		insert(root, e.Path, e.AccountID, e.Record.Size)
		holders[e.AccountID] = true
	}
	sortTree(root)
	if opts.Depth > 0 {
		truncate(root, opts.Depth)
	}

	result := &Result{Prefix: opts.Prefix, Root: root}
	for id := range holders {
		result.Accounts = append(result.Accounts, id)
	}
	sort.Strings(result.Accounts)

	logger.Info().Int("files", root.Files).Int64("bytes", root.Bytes).Msg("Command finished")
	return result, nil
}

func insert(root *Node, path, accountID string, size int64) {
	parts := strings.Split(path, "/")
	node := root
	for i, part := range parts {
		node.Files++
		node.Bytes += size
		last := i == len(parts)-1

		var child *Node
		for _, c := range node.Children {
			if c.Name == part && c.IsFile() == last {
				child = c
				break
			}
		}
		if child == nil {
			child = &Node{Name: part, Path: strings.Join(parts[:i+1], "/")}
			node.Children = append(node.Children, child)
		}
		if last {
			child.AccountID = accountID
			child.Files = 1
			child.Bytes = size
		}
		node = child
	}
}

// sortTree orders each level files first, then directories, each by name
func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsFile() != b.IsFile() {
			return a.IsFile()
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}

func truncate(n *Node, depth int) {
	for _, c := range n.Children {
		if c.IsFile() {
			continue
		}
		if depth <= 1 {
			c.Truncated = len(c.Children) > 0
			c.Children = nil
			continue
		}
		truncate(c, depth-1)
	}
}
