package ledger

import (
	"sort"
	"strings"

	"obra/internal/core"
)

// Labels for items without a client or project.
const (
	UnassignedClient = "Sin Cliente"
	GeneralProject   = "General"
)

type (
	// Item is one amount owed: an expense, a timesheet charge or an advance,
	// with its client and project already resolved to names.
	Item struct {
		Client      string        `json:"client"`
		Project     string        `json:"project"`
		Type        core.ItemType `json:"type"`
		Description string        `json:"description"`
		Amount      core.Money    `json:"amount"`
		Date        string        `json:"date"`
		Category    string        `json:"category,omitempty"`
		Worker      string        `json:"worker,omitempty"`
		Hours       float64       `json:"hours,omitempty"`
		PaidBy      string        `json:"paidBy,omitempty"`
		PageID      string        `json:"pageId,omitempty"`
	}

	TypeGroup struct {
		Items    []Item     `json:"items"`
		Subtotal core.Money `json:"subtotal"`
	}

	ProjectNode struct {
		Name     string                      `json:"name"`
		Subtotal core.Money                  `json:"subtotal"`
		ByType   map[core.ItemType]TypeGroup `json:"byType"`
		Types    []core.ItemType             `json:"types"`
		Items    []Item                      `json:"items"`
	}

	ClientNode struct {
		Name     string        `json:"name"`
		Subtotal core.Money    `json:"subtotal"`
		Projects []ProjectNode `json:"projects"`
	}

	Tree struct {
		Clients    []ClientNode `json:"clients"`
		GrandTotal core.Money   `json:"grandTotal"`
	}
)

// Client returns the node for name, if present.
func (t Tree) Client(name string) (ClientNode, bool) {
	for _, c := range t.Clients {
		if c.Name == name {
			return c, true
		}
	}
	return ClientNode{}, false
}

// Project returns the node for name, if present.
func (c ClientNode) Project(name string) (ProjectNode, bool) {
	for _, p := range c.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return ProjectNode{}, false
}

// Rollup folds items into client > project > type. Every subtotal is the sum
// of its children. Clients and projects are ordered by descending subtotal;
// ties keep first-seen order.
func Rollup(items []Item) Tree {
	type projectAcc struct {
		node  ProjectNode
		order int
	}
	type clientAcc struct {
		name     string
		projects map[string]*projectAcc
		order    []string
	}

	clients := make(map[string]*clientAcc)
	var clientOrder []string

	for _, it := range items {
		it.Client = label(it.Client, UnassignedClient)
		it.Project = label(it.Project, GeneralProject)

		c, ok := clients[it.Client]
		if !ok {
			c = &clientAcc{name: it.Client, projects: make(map[string]*projectAcc)}
			clients[it.Client] = c
			clientOrder = append(clientOrder, it.Client)
		}
		p, ok := c.projects[it.Project]
		if !ok {
			p = &projectAcc{node: ProjectNode{Name: it.Project, ByType: make(map[core.ItemType]TypeGroup)}}
			c.projects[it.Project] = p
			c.order = append(c.order, it.Project)
		}

		tg, seen := p.node.ByType[it.Type]
		if !seen {
			p.node.Types = append(p.node.Types, it.Type)
		}
		tg.Items = append(tg.Items, it)
		tg.Subtotal = tg.Subtotal.Add(it.Amount)
		p.node.ByType[it.Type] = tg
		p.node.Items = append(p.node.Items, it)
		p.node.Subtotal = p.node.Subtotal.Add(it.Amount)
	}

	var tree Tree
	for _, name := range clientOrder {
		c := clients[name]
		node := ClientNode{Name: name}
		for _, pn := range c.order {
			p := c.projects[pn].node
			node.Projects = append(node.Projects, p)
			node.Subtotal = node.Subtotal.Add(p.Subtotal)
		}
		sort.SliceStable(node.Projects, func(i, j int) bool {
			return node.Projects[i].Subtotal.Cents > node.Projects[j].Subtotal.Cents
		})
		tree.Clients = append(tree.Clients, node)
		tree.GrandTotal = tree.GrandTotal.Add(node.Subtotal)
	}
	sort.SliceStable(tree.Clients, func(i, j int) bool {
		return tree.Clients[i].Subtotal.Cents > tree.Clients[j].Subtotal.Cents
	})
	return tree
}

type (
	// SubGroup is the second level of a two-level grouping.
	SubGroup struct {
		Name     string     `json:"name"`
		Subtotal core.Money `json:"subtotal"`
		Hours    float64    `json:"hours,omitempty"`
		Items    []Item     `json:"items"`
	}

	TopGroup struct {
		Name     string     `json:"name"`
		Subtotal core.Money `json:"subtotal"`
		Groups   []SubGroup `json:"groups"`
	}
)

// GroupTwoLevel groups items by top(item) then sub(item), substituting the
// given labels for empty keys. Ordering follows Rollup.
func GroupTwoLevel(items []Item, top, sub func(Item) string, topEmpty, subEmpty string) []TopGroup {
	var out []TopGroup
	topIdx := make(map[string]int)
	subIdx := make(map[string]map[string]int)

	for _, it := range items {
		tk := label(top(it), topEmpty)
		sk := label(sub(it), subEmpty)

		ti, ok := topIdx[tk]
		if !ok {
			ti = len(out)
			topIdx[tk] = ti
			subIdx[tk] = make(map[string]int)
			out = append(out, TopGroup{Name: tk})
		}
		tg := &out[ti]
		si, ok := subIdx[tk][sk]
		if !ok {
			si = len(tg.Groups)
			subIdx[tk][sk] = si
			tg.Groups = append(tg.Groups, SubGroup{Name: sk})
		}
		sg := &tg.Groups[si]
		sg.Items = append(sg.Items, it)
		sg.Subtotal = sg.Subtotal.Add(it.Amount)
		sg.Hours += it.Hours
		tg.Subtotal = tg.Subtotal.Add(it.Amount)
	}

	for i := range out {
		groups := out[i].Groups
		sort.SliceStable(groups, func(a, b int) bool {
			return groups[a].Subtotal.Cents > groups[b].Subtotal.Cents
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Subtotal.Cents > out[b].Subtotal.Cents
	})
	return out
}

// label trims s, substituting fallback when nothing is left.
func label(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
