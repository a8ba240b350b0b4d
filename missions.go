package lksearch

import "context"

// Mission collection names as they appear in the archive.
const (
	MissionTESS   = "TESS"
	MissionKepler = "Kepler"
	MissionK2     = "K2"
)

// WithSector restricts a TESS search to the given observing sectors.
func WithSector(sectors ...int) SearchOption { return withSequence(sectors...) }

// WithQuarter restricts a Kepler search to the given quarters.
func WithQuarter(quarters ...int) SearchOption { return withSequence(quarters...) }

// Campaigns 9, 10, and 11 were each observed in two halves; the archive
// stores the halves as separate sequence numbers (9 -> 91 and 92, ...).
var splitCampaigns = map[int][]int{
	9:  {91, 92},
	10: {101, 102},
	11: {111, 112},
}

// splitCampaignLabels names the half-campaign sequence numbers the way the
// archive labels them.
var splitCampaignLabels = map[int]string{
	91: "09a", 92: "09b",
	101: "10a", 102: "10b",
	111: "11a", 112: "11b",
}

// WithCampaign restricts a K2 search to the given campaigns. Split
// campaigns expand to both halves, so WithCampaign(9) matches the rows the
// archive stores under 91 and 92.
func WithCampaign(campaigns ...int) SearchOption {
	expanded := make([]int, 0, len(campaigns))
	for _, c := range campaigns {
		if halves, ok := splitCampaigns[c]; ok {
			expanded = append(expanded, halves...)
			continue
		}
		expanded = append(expanded, c)
	}
	return withSequence(expanded...)
}

// TESSSearch queries the TESS collection (SPOC and FFI-derived HLSP
// products) for the target.
func (c *Client) TESSSearch(ctx context.Context, target string, opts ...SearchOption) (*SearchResult, error) {
	return c.search(ctx, []string{MissionTESS, "HLSP"}, target, opts)
}

// KeplerSearch queries the Kepler collection for the target.
func (c *Client) KeplerSearch(ctx context.Context, target string, opts ...SearchOption) (*SearchResult, error) {
	return c.search(ctx, []string{MissionKepler}, target, opts)
}

// K2Search queries the K2 collection for the target.
func (c *Client) K2Search(ctx context.Context, target string, opts ...SearchOption) (*SearchResult, error) {
	return c.search(ctx, []string{MissionK2}, target, opts)
}
