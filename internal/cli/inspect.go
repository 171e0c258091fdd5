package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/ledger"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listRootStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newInspectCmd creates the inspect command for browsing drawings in the
// terminal. It accepts either a workbook or a genealogy JSON export.
func newInspectCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "inspect [workbook.xlsx|genealogy.json]",
		Short: "Browse drawings and their relationships interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if sheet == "" {
				sheet = cfg.Ledger.Sheet
			}

			tree, err := loadTree(args[0], sheet)
			if err != nil {
				return err
			}
			if tree.NodeCount() == 0 {
				printInfo("No drawings found")
				return nil
			}

			model := newTreeModel(tree)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", "", "worksheet to read for .xlsx input")

	return cmd
}

// loadTree reads the genealogy from a workbook or a JSON export, chosen by
// file extension.
func loadTree(path, sheet string) (*genealogy.Tree, error) {
	if filepath.Ext(path) == ".json" {
		return genealogy.ImportJSON(path)
	}
	led, err := ledger.ReadFile(path, sheet)
	if err != nil {
		return nil, err
	}
	return genealogy.Build(led), nil
}

// treeModel is the bubbletea model for browsing the genealogy.
type treeModel struct {
	tree   *genealogy.Tree
	nodes  []*genealogy.Node
	cursor int
	height int
	offset int
}

func newTreeModel(t *genealogy.Tree) treeModel {
	return treeModel{
		tree:   t,
		nodes:  t.Nodes(),
		height: 15,
	}
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m treeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Drawing Genealogy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	for i := m.offset; i < end; i++ {
		n := m.nodes[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		label := n.ID
		if n.Root {
			label += " " + listRootStyle.Render("(root)")
		}
		b.WriteString(cursor + style.Render(label) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	return b.String()
}

// detailView shows the selected drawing's columns and relationships.
func (m treeModel) detailView() string {
	n := m.nodes[m.cursor]

	var b strings.Builder
	b.WriteString(listDimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")
	b.WriteString(listSelectedStyle.Render(n.ID))
	b.WriteString("\n")

	for _, col := range m.tree.Columns() {
		val := n.Details[col]
		if val == "" {
			val = "不明"
		}
		b.WriteString(fmt.Sprintf("%s %s\n",
			listDimStyle.Render(col+":"), listNormalStyle.Render(val)))
	}

	if parents := m.tree.Parents(n.ID); len(parents) > 0 {
		b.WriteString(listDimStyle.Render("parents: ") + strings.Join(parents, ", ") + "\n")
	}
	if children := m.tree.Children(n.ID); len(children) > 0 {
		b.WriteString(listDimStyle.Render("children: ") + strings.Join(children, ", ") + "\n")
	}

	return b.String()
}
