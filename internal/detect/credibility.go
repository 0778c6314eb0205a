package detect

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// CredibilityTier classifies how much trust a source domain has earned
type CredibilityTier int

const (
	TierUnknown   CredibilityTier = 0 // Not classified
	TierTrusted   CredibilityTier = 1 // Wire services, scientific publishers, official bodies
	TierReputable CredibilityTier = 2 // Major editorial outlets
	TierFlagged   CredibilityTier = 3 // Known misinformation publishers
)

func (t CredibilityTier) String() string {
	switch t {
	case TierTrusted:
		return "trusted"
	case TierReputable:
		return "reputable"
	case TierFlagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// risk maps the tier onto the common risk scale.
func (t CredibilityTier) risk() float64 {
	switch t {
	case TierTrusted:
		return 0.1
	case TierReputable:
		return 0.3
	case TierFlagged:
		return 0.9
	default:
		return 0.5
	}
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    CredibilityTier
}

// CredibilityDetector classifies the content source domain into a trust
// tier and reports it as risk. Configuration-driven: domain lists and
// path patterns come from CredibilityConfig.
type CredibilityDetector struct {
	trustedMap   map[string]bool
	reputableMap map[string]bool
	flaggedMap   map[string]bool
	pathPatterns []*compiledPattern
}

// NewCredibilityDetector creates a detector from the given configuration
func NewCredibilityDetector(config *model.CredibilityConfig) *CredibilityDetector {
	if config == nil {
		config = &model.DefaultConfig().Credibility
	}

	d := &CredibilityDetector{
		trustedMap:   make(map[string]bool),
		reputableMap: make(map[string]bool),
		flaggedMap:   make(map[string]bool),
	}

	for _, domain := range config.TrustedDomains {
		d.trustedMap[domain] = true
	}
	for _, domain := range config.ReputableDomains {
		d.reputableMap[domain] = true
	}
	for _, domain := range config.FlaggedDomains {
		d.flaggedMap[domain] = true
	}

	for _, p := range config.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		tier := TierUnknown
		switch strings.ToLower(p.Tier) {
		case "trusted":
			tier = TierTrusted
		case "reputable":
			tier = TierReputable
		case "flagged":
			tier = TierFlagged
		}
		d.pathPatterns = append(d.pathPatterns, &compiledPattern{pattern: re, tier: tier})
	}

	return d
}

// Modality returns the credibility channel
func (d *CredibilityDetector) Modality() model.Modality {
	return model.ModalityCredibility
}

// Detect classifies the source URL's domain. Content without a source
// URL has nothing to classify and reports unavailable.
func (d *CredibilityDetector) Detect(ctx context.Context, content Content) (model.ModalityResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModalityResult{}, err
	}
	if content.SourceURL == "" {
		return model.ModalityResult{}, fmt.Errorf("%w: no source URL", ErrDetectorUnavailable)
	}

	tier := d.Classify(content.SourceURL)

	confidence := 0.8
	if tier == TierUnknown {
		// An unclassified domain is weak evidence either way.
		confidence = 0.3
	}

	host := hostOf(content.SourceURL)
	return model.ModalityResult{
		Score:      tier.risk(),
		Confidence: confidence,
		Features: []model.Feature{
			{Name: "source_domain", Value: host},
			{Name: "credibility_tier", Value: tier.String()},
		},
	}, nil
}

// Classify maps a URL to a credibility tier. Exact host matches win,
// then registrable-domain suffix matches, then path patterns.
func (d *CredibilityDetector) Classify(rawURL string) CredibilityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return TierUnknown
	}

	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))

	if tier, ok := d.lookupDomain(host); ok {
		return tier
	}

	// Suffix match so subdomains inherit their parent's tier.
	parts := strings.Split(host, ".")
	for i := 1; i < len(parts)-1; i++ {
		if tier, ok := d.lookupDomain(strings.Join(parts[i:], ".")); ok {
			return tier
		}
	}

	for _, p := range d.pathPatterns {
		if p.pattern.MatchString(parsed.Path) {
			return p.tier
		}
	}

	return TierUnknown
}

func (d *CredibilityDetector) lookupDomain(host string) (CredibilityTier, bool) {
	switch {
	case d.flaggedMap[host]:
		return TierFlagged, true
	case d.trustedMap[host]:
		return TierTrusted, true
	case d.reputableMap[host]:
		return TierReputable, true
	default:
		return TierUnknown, false
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
