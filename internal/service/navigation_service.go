package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/dto"
	"github.com/noah-isme/navmenu-api/internal/models"
	"github.com/noah-isme/navmenu-api/pkg/config"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

type menuLocationLister interface {
	ListByLocation(ctx context.Context, location string) ([]models.Menu, error)
}

type menuItemLister interface {
	ListByMenu(ctx context.Context, menuID string) ([]models.MenuItem, error)
}

// courseQuerier is the course-query collaborator consumed during dynamic item
// expansion. Failures are recovered locally, never surfaced to the viewer.
type courseQuerier interface {
	Query(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error)
}

// NavigationService assembles the ordered, filtered render model for one
// placement and viewer.
type NavigationService struct {
	menus   menuLocationLister
	items   menuItemLister
	courses courseQuerier
	cache   *CacheService
	metrics *MetricsService
	cfg     config.NavigationConfig
	logger  *zap.Logger
}

// NewNavigationService constructs the assembler.
func NewNavigationService(menus menuLocationLister, items menuItemLister, courses courseQuerier, cache *CacheService, metrics *MetricsService, cfg config.NavigationConfig, logger *zap.Logger) *NavigationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationService{menus: menus, items: items, courses: courses, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// Assemble produces the render model for the placement. The boolean reports
// whether the payload came from cache.
func (s *NavigationService) Assemble(ctx context.Context, placement string, viewer models.ViewerContext) (*dto.NavigationResponse, bool, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveAssembly(placement, time.Since(start))
	}()

	cacheKey := fmt.Sprintf("nav:%s:%s", placement, viewerFingerprint(viewer))
	if s.cache.Enabled() {
		var cached dto.NavigationResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	menus, err := s.menus.ListByLocation(ctx, placement)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menus")
	}

	resp := &dto.NavigationResponse{Placement: placement, Menus: []dto.MenuRender{}}
	for _, menu := range menus {
		if !Visible(menu.VisibilityRules, viewer) {
			continue
		}
		render, warnings, err := s.assembleMenu(ctx, menu, viewer)
		if err != nil {
			return nil, false, err
		}
		resp.Menus = append(resp.Menus, *render)
		resp.Warnings = append(resp.Warnings, warnings...)
	}

	// Payloads carrying warnings are not cached so a transient collaborator
	// failure cannot pin a degraded menu for the whole TTL.
	if s.cache.Enabled() && len(resp.Warnings) == 0 {
		_ = s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	}
	return resp, false, nil
}

// InvalidateNavigation drops every assembled payload. Called by the
// configuration services after a write.
func (s *NavigationService) InvalidateNavigation(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "nav:*"); err != nil {
		s.logger.Warn("navigation cache invalidation failed", zap.Error(err))
	}
}

func (s *NavigationService) assembleMenu(ctx context.Context, menu models.Menu, viewer models.ViewerContext) (*dto.MenuRender, []string, error) {
	items, err := s.items.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu items")
	}

	visible := items[:0:0]
	for _, item := range items {
		if Visible(item.VisibilityRules, viewer) {
			visible = append(visible, item)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].SortOrder != visible[j].SortOrder {
			return visible[i].SortOrder < visible[j].SortOrder
		}
		return visible[i].ID < visible[j].ID
	})

	render := &dto.MenuRender{
		ID:           menu.ID,
		Title:        menu.Title,
		Description:  menu.Description,
		Mode:         menu.Mode,
		Type:         menu.Type,
		CSSClass:     menu.CSSClass,
		MoreBehavior: menu.MoreBehavior,
		Inline:       []dto.ItemRender{},
		Submenu:      []dto.ItemRender{},
	}
	if menu.Type == models.MenuTypeCard {
		render.Card = &dto.CardLayout{Size: menu.CardSize, Form: menu.CardForm, Overflow: menu.CardOverflow}
	}

	var warnings []string
	for _, item := range visible {
		var entries []dto.ItemRender
		if item.Type == models.ItemTypeDynamicCourses {
			expanded, warn := s.expand(ctx, item, viewer)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			entries = expanded
		} else {
			entries = []dto.ItemRender{itemEntry(item, item.Title, item.URL, "")}
		}

		submenu := menu.Mode == models.MenuModeSubmenu && item.Mode == models.MenuModeSubmenu
		if submenu {
			render.Submenu = append(render.Submenu, entries...)
		} else {
			render.Inline = append(render.Inline, entries...)
		}
	}

	return render, warnings, nil
}

// expand resolves a dynamic-courses item into concrete entries through the
// course-query collaborator. A collaborator failure or an exceeded budget
// yields zero entries and a warning, never a hard error.
func (s *NavigationService) expand(ctx context.Context, item models.MenuItem, viewer models.ViewerContext) ([]dto.ItemRender, string) {
	if s.courses == nil {
		return nil, fmt.Sprintf("menu item %q: no course source configured", item.Title)
	}

	queryCtx := ctx
	if s.cfg.CourseQueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.CourseQueryTimeout)
		defer cancel()
	}

	filter := models.CourseFilter{
		UserID:             viewer.UserID,
		Categories:         item.Categories,
		EnrolmentRoles:     item.EnrolmentRoles,
		CompletionStatuses: item.CompletionStatuses,
		DateRanges:         item.DateRanges,
		CustomFields:       item.CustomFieldCriteria,
		Limit:              s.cfg.MaxCourseEntries,
	}
	courses, err := s.courses.Query(queryCtx, filter)
	if err != nil {
		s.metrics.RecordExpansionError()
		s.logger.Warn("course query failed",
			zap.String("item_id", item.ID),
			zap.Error(err))
		return nil, fmt.Sprintf("menu item %q: course lookup unavailable", item.Title)
	}

	entries := make([]dto.ItemRender, 0, len(courses))
	for _, course := range courses {
		title := course.Fullname
		if item.DisplayField == models.DisplayFieldShortname {
			title = course.Shortname
		}
		summary := course.Summary
		if item.TextCount > 0 {
			summary = truncateWords(summary, item.TextCount)
		}
		entry := itemEntry(item, title, course.URL, summary)
		entry.ID = fmt.Sprintf("%s:%d", item.ID, course.ID)
		entry.CourseID = course.ID
		entries = append(entries, entry)
	}
	return entries, ""
}

// itemEntry copies the item's presentation attributes onto a render entry.
func itemEntry(item models.MenuItem, title, url, summary string) dto.ItemRender {
	return dto.ItemRender{
		ID:              item.ID,
		Title:           title,
		URL:             url,
		SortOrder:       item.SortOrder,
		Icon:            item.Icon,
		Display:         item.Display,
		Tooltip:         item.Tooltip,
		Target:          item.Target,
		HideDesktop:     item.HideDesktop,
		HideTablet:      item.HideTablet,
		HideMobile:      item.HideMobile,
		CSSClass:        item.CSSClass,
		Image:           item.Image,
		TextPosition:    item.TextPosition,
		TextColor:       item.TextColor,
		BackgroundColor: item.BackgroundColor,
		Summary:         summary,
	}
}

func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + "..."
}

// viewerFingerprint derives a stable cache key component from the visibility
// inputs. The timestamp is deliberately excluded; staleness is bounded by the
// cache TTL instead.
func viewerFingerprint(viewer models.ViewerContext) string {
	roles := append([]int64(nil), viewer.Roles...)
	system := append([]int64(nil), viewer.SystemRoles...)
	cohorts := append([]int64(nil), viewer.Cohorts...)
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	sort.Slice(system, func(i, j int) bool { return system[i] < system[j] })
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i] < cohorts[j] })

	h := fnv.New64a()
	fmt.Fprintf(h, "u=%s|r=%v|s=%v|c=%v|l=%s", viewer.UserID, roles, system, cohorts, viewer.Language)
	return fmt.Sprintf("%x", h.Sum64())
}
