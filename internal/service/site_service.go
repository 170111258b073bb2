package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"gorm.io/gorm"
)

var (
	ErrSiteNotFound  = errors.New("tenant not found")
	ErrSiteAmbiguous = errors.New("ambiguous tenant configuration")
	ErrSiteExists    = errors.New("site already registered")
	ErrRootNotHome   = errors.New("site root must be a top-level home page")
)

const (
	defaultHTTPPort  = 80
	defaultHTTPSPort = 443
)

// SiteService registers tenants and maps request hosts to them.
type SiteService struct {
	db         *gorm.DB
	logger     *slog.Logger
	trustProxy bool
}

// SiteInput is accepted when registering a site.
type SiteInput struct {
	Hostname   string `validate:"required,max=255"`
	Port       int    `validate:"min=0,max=65535"`
	SiteName   string `validate:"max=255"`
	RootPageID *uint
}

// NewSiteService returns a SiteService logging through slog.Default.
func NewSiteService(gdb *gorm.DB) *SiteService {
	return &SiteService{db: gdb, logger: slog.Default()}
}

// SetLogger replaces the logger used for resolution failures.
func (s *SiteService) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// TrustProxyHeaders makes ResolveRequest honour X-Forwarded-Host/Port/Proto.
func (s *SiteService) TrustProxyHeaders(trust bool) {
	s.trustProxy = trust
}

// SplitHost normalises a Host header value. The port is returned only when
// the header carries one explicitly.
func SplitHost(hostHeader string) (host string, port int, hasPort bool, err error) {
	raw := strings.ToLower(strings.TrimSpace(hostHeader))
	if raw == "" {
		return "", 0, false, nil
	}

	host = raw
	var portText string
	switch {
	case strings.HasPrefix(raw, "["):
		if strings.Contains(raw, "]:") {
			host, portText, err = net.SplitHostPort(raw)
			if err != nil {
				return "", 0, false, fmt.Errorf("invalid host %q: %w", hostHeader, err)
			}
		} else {
			host = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
		}
	case strings.Count(raw, ":") == 1:
		host, portText, err = net.SplitHostPort(raw)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid host %q: %w", hostHeader, err)
		}
	}

	host = strings.TrimSuffix(host, ".")
	if portText == "" {
		return host, 0, false, nil
	}

	port, err = strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, false, fmt.Errorf("invalid port in host %q", hostHeader)
	}
	return host, port, true, nil
}

// Resolve returns the single site registered for host and port. A port in
// hostHeader overrides port. When the effective port is 80 or 443 and no
// site matches exactly, a site on the other default port is used; failing
// that the hostname alone must identify exactly one site.
func (s *SiteService) Resolve(ctx context.Context, hostHeader string, port int) (*db.Site, error) {
	host, headerPort, hasPort, err := SplitHost(hostHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSiteNotFound, err)
	}
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrSiteNotFound)
	}
	if hasPort {
		port = headerPort
	}
	if port == 0 {
		port = defaultHTTPPort
	}

	gdb := s.db.WithContext(ctx)

	var exact []db.Site
	if err := gdb.Where("hostname = ? AND port = ?", host, port).Limit(2).Find(&exact).Error; err != nil {
		return nil, fmt.Errorf("resolve site: %w", err)
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		return nil, s.ambiguous(host, port, exact)
	}

	if port == defaultHTTPPort || port == defaultHTTPSPort {
		other := defaultHTTPPort
		if port == defaultHTTPPort {
			other = defaultHTTPSPort
		}
		var sibling []db.Site
		if err := gdb.Where("hostname = ? AND port = ?", host, other).Limit(1).Find(&sibling).Error; err != nil {
			return nil, fmt.Errorf("resolve site: %w", err)
		}
		if len(sibling) == 1 {
			return &sibling[0], nil
		}

		var candidates []db.Site
		if err := gdb.Where("hostname = ?", host).Order("port asc").Find(&candidates).Error; err != nil {
			return nil, fmt.Errorf("resolve site: %w", err)
		}
		switch len(candidates) {
		case 1:
			return &candidates[0], nil
		case 0:
		default:
			return nil, s.ambiguous(host, port, candidates)
		}
	}

	attrs := []any{slog.String("host", host), slog.Int("port", port)}
	if hint := s.nearestHostname(ctx, host); hint != "" {
		attrs = append(attrs, slog.String("closest_registered_host", hint))
	}
	s.logger.Warn("no site registered for request host", attrs...)

	return nil, fmt.Errorf("%w: %s:%d", ErrSiteNotFound, host, port)
}

// ResolveRequest resolves the site for an inbound request.
func (s *SiteService) ResolveRequest(r *http.Request) (*db.Site, error) {
	host := r.Host
	port := defaultHTTPPort
	if r.TLS != nil {
		port = defaultHTTPSPort
	}

	if s.trustProxy {
		if forwarded := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
			host = forwarded
		}
		switch strings.ToLower(firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))) {
		case "https":
			port = defaultHTTPSPort
		case "http":
			port = defaultHTTPPort
		}
		if raw := firstHeaderValue(r.Header.Get("X-Forwarded-Port")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 65535 {
				port = parsed
			}
		}
	}

	return s.Resolve(r.Context(), host, port)
}

// Create registers a new site.
func (s *SiteService) Create(ctx context.Context, input SiteInput) (*db.Site, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	host, headerPort, hasPort, err := SplitHost(input.Hostname)
	if err != nil || host == "" {
		return nil, fmt.Errorf("%w: hostname %q", ErrInvalidInput, input.Hostname)
	}
	port := input.Port
	if hasPort {
		if port != 0 && port != headerPort {
			return nil, fmt.Errorf("%w: hostname port %d conflicts with port %d", ErrInvalidInput, headerPort, port)
		}
		port = headerPort
	}
	if port == 0 {
		port = defaultHTTPPort
	}

	site := db.Site{
		Hostname: host,
		Port:     port,
		SiteName: strings.TrimSpace(input.SiteName),
	}
	if site.SiteName == "" {
		site.SiteName = host
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Site{}).Where("hostname = ? AND port = ?", host, port).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrSiteExists, site.Address())
		}

		if input.RootPageID != nil {
			if err := checkSiteRoot(tx, *input.RootPageID); err != nil {
				return err
			}
			site.RootPageID = input.RootPageID
		}

		return insertSite(tx, &site)
	})
	if err != nil {
		return nil, err
	}

	return &site, nil
}

// insertSite stores site, reporting a lost race on the host and port
// index as ErrSiteExists.
func insertSite(tx *gorm.DB, site *db.Site) error {
	if err := tx.Create(site).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrSiteExists, site.Address())
		}
		return err
	}
	return nil
}

// Get fetches a site by id.
func (s *SiteService) Get(ctx context.Context, id uint) (*db.Site, error) {
	var site db.Site
	if err := s.db.WithContext(ctx).First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrSiteNotFound, id)
		}
		return nil, err
	}
	return &site, nil
}

// List returns all sites ordered by hostname and port.
func (s *SiteService) List(ctx context.Context) ([]db.Site, error) {
	var sites []db.Site
	if err := s.db.WithContext(ctx).Order("hostname asc, port asc").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

// SetRoot points a site at its home page.
func (s *SiteService) SetRoot(ctx context.Context, siteID, pageID uint) (*db.Site, error) {
	var site db.Site
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&site, siteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrSiteNotFound, siteID)
			}
			return err
		}
		if err := checkSiteRoot(tx, pageID); err != nil {
			return err
		}
		site.RootPageID = &pageID
		return tx.Model(&site).Update("root_page_id", pageID).Error
	})
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func checkSiteRoot(tx *gorm.DB, pageID uint) error {
	var page db.Page
	if err := tx.First(&page, pageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrPageNotFound, pageID)
		}
		return err
	}
	if page.Kind != pagetype.KindHome || page.ParentID != nil {
		return fmt.Errorf("%w: page %d is %s", ErrRootNotHome, page.ID, page.Kind.Label())
	}
	return nil
}

func (s *SiteService) ambiguous(host string, port int, matches []db.Site) error {
	addrs := make([]string, 0, len(matches))
	for _, site := range matches {
		addrs = append(addrs, site.Address())
	}
	s.logger.Error("request host matches several sites",
		slog.String("host", host),
		slog.Int("port", port),
		slog.Any("sites", addrs),
	)
	return fmt.Errorf("%w: %s:%d matches %s", ErrSiteAmbiguous, host, port, strings.Join(addrs, ", "))
}

func (s *SiteService) nearestHostname(ctx context.Context, host string) string {
	var hostnames []string
	if err := s.db.WithContext(ctx).Model(&db.Site{}).Distinct().Pluck("hostname", &hostnames).Error; err != nil {
		return ""
	}
	return closestHostname(host, hostnames)
}

// closestHostname picks the registered hostname with the smallest edit
// distance to host, if it is close enough to be a plausible typo.
func closestHostname(host string, hostnames []string) string {
	best := ""
	bestDistance := -1
	for _, candidate := range hostnames {
		distance := levenshtein.ComputeDistance(host, candidate)
		if bestDistance < 0 || distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	if best == "" {
		return ""
	}

	limit := len(host) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDistance > limit {
		return ""
	}
	return best
}

func firstHeaderValue(raw string) string {
	if idx := strings.Index(raw, ","); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}
