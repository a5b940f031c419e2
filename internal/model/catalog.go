package model

// RoleDefaults holds the default grant set for one role, minus identity
// and timestamp fields.
type RoleDefaults struct {
	Pages     []PagePermission
	Resources []ResourcePermission
}

// Catalog holds the immutable default permission table. It is built once at
// startup and injected into the permission service, so tests can substitute
// an alternate table.
type Catalog struct {
	defaults map[Role]RoleDefaults
}

// NewCatalog builds the default permission table:
//   - admin gets every page and every action on every resource
//   - analyst gets the dashboard and view-only charts
//   - viewer gets dashboard and workflows, with view on a reduced widget set
func NewCatalog() *Catalog {
	allActions := []Action{ActionCreate, ActionDelete, ActionEdit, ActionView}

	return &Catalog{defaults: map[Role]RoleDefaults{
		RoleAdmin: {
			Pages: []PagePermission{
				{PageID: PageDashboard, CanAccess: true},
				{PageID: PageWorkflows, CanAccess: true},
				{PageID: PageAccessControl, CanAccess: true},
			},
			Resources: []ResourcePermission{
				{ResourceID: ResourceBarChart1, Actions: allActions},
				{ResourceID: ResourceBarChart2, Actions: allActions},
				{ResourceID: ResourceLineChart, Actions: allActions},
				{ResourceID: ResourcePieChart, Actions: allActions},
				{ResourceID: ResourceWorkflowItems, Actions: allActions},
			},
		},
		RoleAnalyst: {
			Pages: []PagePermission{
				{PageID: PageDashboard, CanAccess: true},
				{PageID: PageWorkflows, CanAccess: false},
				{PageID: PageAccessControl, CanAccess: false},
			},
			Resources: []ResourcePermission{
				{ResourceID: ResourceBarChart1, Actions: []Action{ActionView}},
				{ResourceID: ResourceBarChart2, Actions: []Action{ActionView}},
				{ResourceID: ResourceLineChart, Actions: []Action{ActionView}},
				{ResourceID: ResourcePieChart, Actions: []Action{ActionView}},
				{ResourceID: ResourceWorkflowItems, Actions: []Action{}},
			},
		},
		RoleViewer: {
			Pages: []PagePermission{
				{PageID: PageDashboard, CanAccess: true},
				{PageID: PageWorkflows, CanAccess: true},
				{PageID: PageAccessControl, CanAccess: false},
			},
			Resources: []ResourcePermission{
				{ResourceID: ResourceBarChart1, Actions: []Action{ActionView}},
				{ResourceID: ResourceBarChart2, Actions: []Action{}},
				{ResourceID: ResourceLineChart, Actions: []Action{ActionView}},
				{ResourceID: ResourcePieChart, Actions: []Action{}},
				{ResourceID: ResourceWorkflowItems, Actions: []Action{ActionView}},
			},
		},
	}}
}

// DefaultsFor returns a deep copy of the default grant set for role, so
// callers can never mutate the catalog through a returned slice.
func (c *Catalog) DefaultsFor(role Role) RoleDefaults {
	d := c.defaults[role]

	pages := make([]PagePermission, len(d.Pages))
	copy(pages, d.Pages)

	resources := make([]ResourcePermission, len(d.Resources))
	for i, r := range d.Resources {
		actions := make([]Action, len(r.Actions))
		copy(actions, r.Actions)
		resources[i] = ResourcePermission{ResourceID: r.ResourceID, Actions: actions}
	}

	return RoleDefaults{Pages: pages, Resources: resources}
}
