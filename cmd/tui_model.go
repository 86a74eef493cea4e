package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/config"
	"github.com/tayloree/foodcat/internal/filter"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

var (
	tuiHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiRejectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiOfferStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

type tuiLoadConfig struct {
	ctx         context.Context
	cfg         *config.Config
	settings    matchSettings
	initialOpts filter.Options
}

type tuiDataLoadedMsg struct {
	sourceLabel string
	allOffers   []categorize.CategorizedOffer
	initialOpts filter.Options
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string {
	return fmt.Sprintf("Category • %d offers", g.count)
}

type tuiOfferItem struct {
	offer       categorize.CategorizedOffer
	group       string
	title       string
	description string
	filterValue string
}

func (o tuiOfferItem) FilterValue() string { return o.filterValue }
func (o tuiOfferItem) Title() string       { return o.title }
func (o tuiOfferItem) Description() string { return o.description }

type offersTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	sourceLabel string
	allOffers   []categorize.CategorizedOffer

	opts        filter.Options
	initialOpts filter.Options

	sortChoices     []string
	sortIndex       int
	categoryChoices []string
	categoryIndex   int
	storeChoices    []string
	storeIndex      int
	limitChoices    []int
	limitIndex      int

	list   list.Model
	detail viewport.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	groupStarts   []int
	visibleOffers int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingOffersTUIModel(cfg tuiLoadConfig) offersTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Offers"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return offersTUIModel{
		loading:     true,
		spinner:     spin,
		loadCmd:     loadTUIDataCmd(cfg),
		initialOpts: cfg.initialOpts,
		opts:        cfg.initialOpts,
		list:        lst,
		detail:      detail,
		focus:       tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		allOffers, sourceLabel, err := loadTUIData(cfg.ctx, cfg.cfg, cfg.settings)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{
			sourceLabel: sourceLabel,
			allOffers:   allOffers,
			initialOpts: cfg.initialOpts,
		}
	}
}

func (m offersTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m offersTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.sourceLabel = msg.sourceLabel
		m.allOffers = msg.allOffers
		m.initialOpts = canonicalizeTUIOptions(msg.initialOpts)
		m.opts = m.initialOpts
		m.initializeInlineChoices()
		m.applyCurrentFilters(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.loading {
		return m, nil
	}

	if isKey {
		filtering := m.list.FilterState() == list.Filtering
		key := keyMsg.String()

		switch key {
		case "q":
			if !filtering {
				return m, tea.Quit
			}
		case "tab":
			if !filtering {
				if m.focus == tuiFocusList {
					m.focus = tuiFocusDetail
				} else {
					m.focus = tuiFocusList
				}
				return m, nil
			}
		case "esc":
			if m.focus == tuiFocusDetail && !filtering {
				m.focus = tuiFocusList
				return m, nil
			}
		case "?":
			if !filtering {
				m.showHelp = !m.showHelp
				m.resize()
				return m, nil
			}
		case "s":
			if !filtering {
				m.cycleSortMode()
				return m, nil
			}
		case "x":
			if !filtering {
				m.opts.KeepRejected = !m.opts.KeepRejected
				m.applyCurrentFilters(false)
				return m, nil
			}
		case "c":
			if !filtering {
				m.cycleCategory()
				return m, nil
			}
		case "a":
			if !filtering {
				m.cycleStore()
				return m, nil
			}
		case "l":
			if !filtering {
				m.cycleLimit()
				return m, nil
			}
		case "r":
			if !filtering {
				m.opts = m.initialOpts
				m.syncChoiceIndexesFromOptions()
				m.applyCurrentFilters(false)
				return m, nil
			}
		case "]":
			if !filtering {
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				m.jumpSection(1)
				return m, nil
			}
		case "[":
			if !filtering {
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				m.jumpSection(-1)
				return m, nil
			}
		}

		if !filtering && len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if m.list.IsFiltered() {
				return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
			}
			m.jumpToSection(int(key[0] - '1'))
			return m, nil
		}

		if m.focus == tuiFocusDetail && !filtering {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

func (m offersTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane offer explorer.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m offersTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	lines := []string{
		tuiHeaderStyle.Render("foodcat tui"),
		tuiMetaStyle.Render("Preparing interactive interface..."),
		"",
		fmt.Sprintf("%s Loading and categorizing offers", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m *offersTUIModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	headerH := 3
	footerH := 2
	if m.showHelp {
		footerH = 7
	}
	m.bodyHeight = maxInt(8, m.height-headerH-footerH-1)

	listWidth := maxInt(40, int(float64(m.width)*0.43))
	if listWidth > m.width-42 {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 36 {
		detailWidth = 36
		listWidth = m.width - detailWidth - 1
	}

	m.listPaneWidth = listWidth
	m.detailPaneWidth = detailWidth

	listInnerWidth := maxInt(24, listWidth-4)
	detailInnerWidth := maxInt(24, detailWidth-4)
	panelInnerHeight := maxInt(6, m.bodyHeight-2)

	m.list.SetSize(listInnerWidth, panelInnerHeight)
	m.detail.Width = detailInnerWidth
	m.detail.Height = panelInnerHeight
	m.refreshDetail(false)
}

func (m offersTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	top := fmt.Sprintf("foodcat tui  |  %s", m.sourceLabel)
	bottom := fmt.Sprintf(
		"offers: %d visible / %d total  |  filters: %s  |  focus: %s",
		m.visibleOffers, len(m.allOffers), m.activeFilterSummary(), focus,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m offersTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.
		Width(m.listPaneWidth).
		Height(m.bodyHeight).
		Render(m.list.View())
	right := detailBorder.
		Width(m.detailPaneWidth).
		Height(m.bodyHeight).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m offersTUIModel) footerView() string {
	base := "Tab switch pane • / fuzzy filter • s sort • x rejected • c category • a store • l limit • r reset • [/] section jump • 1-9 section index • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • / fuzzy filter • c category • a store • x show rejected • s sort • l limit",
		"group jumps: ] next category • [ previous category • 1..9 jump to numbered category header",
		"detail pane: j/k or ↑/↓ scroll • u/d half-page • b/f page up/down",
		"global: tab switch pane • esc list • r reset inline options • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func (m *offersTUIModel) initializeInlineChoices() {
	m.opts = canonicalizeTUIOptions(m.opts)

	m.sortChoices = []string{"", filter.SortAccuracy, filter.SortPrice, filter.SortEnding, filter.SortName}
	m.categoryChoices = buildCategoryChoices(m.allOffers, m.opts.Category)
	m.storeChoices = buildStoreChoices(m.allOffers, m.opts.Store)
	m.limitChoices = buildLimitChoices(m.opts.Limit)

	m.syncChoiceIndexesFromOptions()
}

func (m *offersTUIModel) syncChoiceIndexesFromOptions() {
	m.sortIndex = indexOfString(m.sortChoices, canonicalSortMode(m.opts.Sort))
	if m.sortIndex < 0 {
		m.sortIndex = 0
	}
	m.opts.Sort = m.sortChoices[m.sortIndex]

	m.categoryIndex = indexOfStringFold(m.categoryChoices, m.opts.Category)
	if m.categoryIndex < 0 {
		m.categoryIndex = 0
		m.opts.Category = ""
	} else {
		m.opts.Category = m.categoryChoices[m.categoryIndex]
	}

	m.storeIndex = indexOfStringFold(m.storeChoices, m.opts.Store)
	if m.storeIndex < 0 {
		m.storeIndex = 0
		m.opts.Store = ""
	} else {
		m.opts.Store = m.storeChoices[m.storeIndex]
	}

	m.limitIndex = indexOfInt(m.limitChoices, m.opts.Limit)
	if m.limitIndex < 0 {
		m.limitIndex = 0
		m.opts.Limit = m.limitChoices[m.limitIndex]
	}
}

func (m *offersTUIModel) cycleSortMode() {
	if len(m.sortChoices) == 0 {
		return
	}
	m.sortIndex = (m.sortIndex + 1) % len(m.sortChoices)
	m.opts.Sort = m.sortChoices[m.sortIndex]
	m.applyCurrentFilters(false)
}

func (m *offersTUIModel) cycleCategory() {
	if len(m.categoryChoices) == 0 {
		return
	}
	m.categoryIndex = (m.categoryIndex + 1) % len(m.categoryChoices)
	m.opts.Category = m.categoryChoices[m.categoryIndex]
	m.applyCurrentFilters(false)
}

func (m *offersTUIModel) cycleStore() {
	if len(m.storeChoices) == 0 {
		return
	}
	m.storeIndex = (m.storeIndex + 1) % len(m.storeChoices)
	m.opts.Store = m.storeChoices[m.storeIndex]
	m.applyCurrentFilters(false)
}

func (m *offersTUIModel) cycleLimit() {
	if len(m.limitChoices) == 0 {
		return
	}
	m.limitIndex = (m.limitIndex + 1) % len(m.limitChoices)
	m.opts.Limit = m.limitChoices[m.limitIndex]
	m.applyCurrentFilters(false)
}

func (m offersTUIModel) activeFilterSummary() string {
	parts := []string{}
	if m.opts.KeepRejected {
		parts = append(parts, "rejected shown")
	} else {
		parts = append(parts, fmt.Sprintf("accuracy>=%d", m.opts.AccuracyThreshold))
	}
	if m.opts.Category != "" {
		parts = append(parts, "category:"+m.opts.Category)
	}
	if m.opts.Store != "" {
		parts = append(parts, "store:"+m.opts.Store)
	}
	if m.opts.Query != "" {
		parts = append(parts, "query:"+m.opts.Query)
	}
	if m.opts.Sort != "" {
		parts = append(parts, "sort:"+m.opts.Sort)
	}
	if m.opts.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.opts.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	return strings.Join(parts, ", ")
}

func (m *offersTUIModel) applyCurrentFilters(resetSelection bool) {
	currentID := m.selectedID
	filtered := filter.Apply(m.allOffers, m.opts)
	m.visibleOffers = len(filtered)

	items, starts := buildGroupedListItems(filtered)
	m.groupStarts = starts

	m.list.Title = fmt.Sprintf("Offers • %d visible", m.visibleOffers)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstOfferItemIndex(items)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *offersTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiOfferItem:
			content = renderOfferDetailContent(item.offer, filter.RejectReason(item.offer, m.opts), m.detail.Width)
			nextID = stableIDForOffer(item.offer)
		case tuiGroupItem:
			content = m.renderGroupDetail(item)
			nextID = stableIDForGroup(item.name)
		}
	}
	if content == "" {
		content = "No offers match the current inline filters.\n\nTry pressing r to reset filters or x to show rejected offers."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m offersTUIModel) renderGroupDetail(group tuiGroupItem) string {
	preview := m.groupPreviewTitles(group.name, 5)

	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Category %d: %s", group.ordinal, group.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d offers in this category", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next category, `[` previous category",
		"- `1..9` jump directly to category number",
	}
	if len(preview) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}

	return strings.Join(lines, "\n")
}

func (m offersTUIModel) groupPreviewTitles(group string, max int) []string {
	out := make([]string, 0, max)
	for _, item := range m.list.Items() {
		offer, ok := item.(tuiOfferItem)
		if !ok || offer.group != group {
			continue
		}
		out = append(out, offer.title)
		if len(out) >= max {
			break
		}
	}
	return out
}

func (m *offersTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.groupStarts) {
		return
	}

	target := firstOfferIndexFrom(m.list.Items(), m.groupStarts[index])
	if target < 0 {
		target = m.groupStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m *offersTUIModel) jumpSection(delta int) {
	if len(m.groupStarts) == 0 {
		return
	}

	current := m.currentSectionIndex()
	if current < 0 {
		current = 0
	}
	next := current + delta
	if next < 0 {
		next = len(m.groupStarts) - 1
	}
	if next >= len(m.groupStarts) {
		next = 0
	}
	m.jumpToSection(next)
}

func (m offersTUIModel) currentSectionIndex() int {
	if len(m.groupStarts) == 0 {
		return -1
	}
	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.groupStarts {
		if start <= cursor {
			current = i
			continue
		}
		break
	}
	return current
}

// buildGroupedListItems groups offers under their primary category. Groups
// follow category priority, then size; the unknown group always comes last.
func buildGroupedListItems(offers []categorize.CategorizedOffer) (items []list.Item, starts []int) {
	if len(offers) == 0 {
		return nil, nil
	}

	groups := map[string][]categorize.CategorizedOffer{}
	for _, offer := range offers {
		group := offer.PrimaryCategory()
		groups[group] = append(groups[group], offer)
	}

	type groupMeta struct {
		name  string
		count int
	}

	metas := make([]groupMeta, 0, len(groups))
	for name, offers := range groups {
		metas = append(metas, groupMeta{name: name, count: len(offers)})
	}
	sort.Slice(metas, func(i, j int) bool {
		iUnknown := metas[i].name == categorize.UnknownCategory
		jUnknown := metas[j].name == categorize.UnknownCategory
		if iUnknown != jUnknown {
			return jUnknown
		}
		pi, pj := categorize.Priority(metas[i].name), categorize.Priority(metas[j].name)
		if pi != pj {
			return pi > pj
		}
		if metas[i].count != metas[j].count {
			return metas[i].count > metas[j].count
		}
		return metas[i].name < metas[j].name
	})

	items = make([]list.Item, 0, len(offers)+len(metas))
	starts = make([]int, 0, len(metas))
	for idx, meta := range metas {
		starts = append(starts, len(items))

		items = append(items, tuiGroupItem{
			name:    meta.name,
			count:   meta.count,
			ordinal: idx + 1,
		})
		for _, offer := range groups[meta.name] {
			items = append(items, buildTUIOfferItem(offer, meta.name))
		}
	}

	return items, starts
}

func buildTUIOfferItem(offer categorize.CategorizedOffer, group string) tuiOfferItem {
	title := emptyIf(filter.CleanText(offer.Name), "Unnamed offer")

	descParts := []string{}
	if offer.Price > 0 {
		descParts = append(descParts, strings.TrimSpace(fmt.Sprintf("%.2f %s", offer.Price, offer.Currency)))
	}
	if offer.Matched() {
		descParts = append(descParts, fmt.Sprintf("%d%%", offer.MatchAccuracy))
	}
	if s := strings.TrimSpace(offer.Store); s != "" {
		descParts = append(descParts, s)
	}
	if end := shortOfferDate(offer.ValidTo); end != "" {
		descParts = append(descParts, "ends "+end)
	}

	matched := make([]string, 0, len(offer.MatchedItems))
	for _, m := range offer.MatchedItems {
		matched = append(matched, m.Name)
	}
	filterTokens := []string{
		title,
		offer.Store,
		strings.Join(offer.Categories, " "),
		strings.Join(matched, " "),
		group,
	}

	return tuiOfferItem{
		offer:       offer,
		group:       group,
		title:       title,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join(filterTokens, " ")),
	}
}

func renderOfferDetailContent(offer categorize.CategorizedOffer, reason filter.Reason, width int) string {
	maxWidth := maxInt(24, width)

	title := emptyIf(filter.CleanText(offer.Name), "Unnamed offer")
	lines := []string{
		tuiOfferStyle.Render(wrapText(title, maxWidth)),
	}

	metaBits := []string{}
	if reason != filter.ReasonNone {
		metaBits = append(metaBits, tuiRejectedStyle.Render("rejected: "+string(reason)))
	}
	if len(offer.Categories) > 0 {
		metaBits = append(metaBits, "categories: "+strings.Join(offer.Categories, ", "))
	}
	if len(metaBits) > 0 {
		lines = append(lines, tuiMetaStyle.Render(wrapText(strings.Join(metaBits, "  |  "), maxWidth)))
	}

	lines = append(lines, "")
	price := "No price provided"
	if offer.Price > 0 {
		price = strings.TrimSpace(fmt.Sprintf("%.2f %s", offer.Price, offer.Currency))
	}
	lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Price:"), tuiValueStyle.Render(price)))
	if offer.Weight > 0 {
		lines = append(lines, fmt.Sprintf("%s %g %s", tuiMetaStyle.Render("Weight:"), offer.Weight, offer.WeightUnit))
	}
	lines = append(lines, fmt.Sprintf("%s %d%%", tuiMetaStyle.Render("Accuracy:"), offer.MatchAccuracy))
	lines = append(lines, "")

	lines = append(lines, tuiMetaStyle.Render("Matched items:"))
	if len(offer.MatchedItems) == 0 {
		lines = append(lines, tuiMutedStyle.Render("none"))
	}
	for _, m := range offer.MatchedItems {
		lines = append(lines, fmt.Sprintf("• %s (%s) %d%%", m.Name, m.Category, m.Accuracy))
	}
	lines = append(lines, "")

	if store := strings.TrimSpace(offer.Store); store != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Store:"), store))
	}
	validity := strings.Trim(shortOfferDate(offer.ValidFrom)+" - "+shortOfferDate(offer.ValidTo), " -")
	if validity != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Valid:"), validity))
	}
	lines = append(lines, fmt.Sprintf("%s %d", tuiMetaStyle.Render("Prepared-meal penalty:"), categorize.PreparedMealPenalty(offer.Name)))

	return strings.Join(lines, "\n")
}

// shortOfferDate keeps the date part of an ISO timestamp.
func shortOfferDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 10 && raw[4] == '-' && raw[7] == '-' {
		return raw[:10]
	}
	return raw
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func canonicalizeTUIOptions(opts filter.Options) filter.Options {
	opts.Sort = canonicalSortMode(opts.Sort)
	if opts.Category != "" {
		opts.Category = filter.ResolveCategory(opts.Category)
	}
	if opts.Store != "" {
		opts.Store = strings.TrimSpace(opts.Store)
	}
	if opts.Query != "" {
		opts.Query = strings.TrimSpace(opts.Query)
	}
	return opts
}

func canonicalSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accuracy", "confidence", "score":
		return filter.SortAccuracy
	case "price", "cheapest":
		return filter.SortPrice
	case "ending", "end", "expiry", "expiration":
		return filter.SortEnding
	case "name", "alpha", "alphabetical":
		return filter.SortName
	default:
		return ""
	}
}

func buildCategoryChoices(offers []categorize.CategorizedOffer, current string) []string {
	counts := map[string]int{}
	for _, offer := range offers {
		counts[offer.PrimaryCategory()]++
	}
	return rankedChoices(counts, current)
}

func buildStoreChoices(offers []categorize.CategorizedOffer, current string) []string {
	counts := map[string]int{}
	for _, offer := range offers {
		if s := strings.TrimSpace(offer.Store); s != "" {
			counts[s]++
		}
	}
	return rankedChoices(counts, current)
}

// rankedChoices lists keys by count, then name, behind an empty "all" entry.
// current is kept even when no offer carries it.
func rankedChoices(counts map[string]int, current string) []string {
	values := make([]string, 0, len(counts)+1)
	for value := range counts {
		values = append(values, value)
	}
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, current)
	}
	sort.SliceStable(values, func(i, j int) bool {
		left, right := counts[values[i]], counts[values[j]]
		if left != right {
			return left > right
		}
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return append([]string{""}, values...)
}

func buildLimitChoices(current int) []int {
	values := []int{0, 10, 25, 50, 100}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append(values, current)
		sort.Ints(values)
	}
	return values
}

func indexOfString(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func indexOfStringFold(values []string, target string) int {
	for i, value := range values {
		if strings.EqualFold(value, target) {
			return i
		}
	}
	return -1
}

func indexOfInt(values []int, target int) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstOfferItemIndex(items []list.Item) int {
	return firstOfferIndexFrom(items, 0)
}

func firstOfferIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiOfferItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiOfferItem:
		return stableIDForOffer(value.offer)
	case tuiGroupItem:
		return stableIDForGroup(value.name)
	default:
		return ""
	}
}

// stableIDForOffer keys an offer by store, name and validity since catalog
// offers carry no id of their own.
func stableIDForOffer(offer categorize.CategorizedOffer) string {
	return "offer:" + strings.ToLower(strings.Join([]string{
		strings.TrimSpace(offer.Store),
		strings.TrimSpace(offer.Name),
		strings.TrimSpace(offer.ValidTo),
	}, "|"))
}

func stableIDForGroup(group string) string {
	return "group:" + strings.ToLower(strings.TrimSpace(group))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
