package knowledge

// defaultEntries is the bundled guidance corpus consulted when a deployment
// has not loaded its own knowledge base.
var defaultEntries = []Entry{
	{
		ID:      "kb-topical-authority",
		Title:   "Building topical authority with content clusters",
		Source:  "SeoForge Playbook",
		Snippet: "Sites that publish interlinked clusters around one pillar topic outrank broader but shallower competitors for mid-tail queries.",
		Topics:  []string{"topical authority", "content clusters", "saas", "b2b"},
	},
	{
		ID:      "kb-intent-mapping",
		Title:   "Mapping content to search intent stages",
		Source:  "SeoForge Playbook",
		Snippet: "Informational, comparative and transactional intents need distinct page templates; mixing them on one page suppresses rankings for all three.",
		Topics:  []string{"search intent", "funnel", "ecommerce", "retail"},
	},
	{
		ID:      "kb-eeat-signals",
		Title:   "E-E-A-T signals for YMYL industries",
		Source:  "SeoForge Playbook",
		Snippet: "Finance and health content requires named authors, citations and review dates; anonymous content loses visibility after core updates.",
		Topics:  []string{"eeat", "finance", "health", "ymyl", "trust"},
	},
	{
		ID:      "kb-programmatic-seo",
		Title:   "When programmatic pages help and when they hurt",
		Source:  "SeoForge Playbook",
		Snippet: "Template-generated pages win for inventory-style queries (locations, integrations) but thin variants trigger quality demotions.",
		Topics:  []string{"programmatic seo", "marketplace", "travel", "local"},
	},
	{
		ID:      "kb-refresh-cadence",
		Title:   "Content refresh cadence and decay",
		Source:  "SeoForge Playbook",
		Snippet: "Rankings for competitive commercial terms decay measurably after 9-12 months without updates; refreshing statistics and examples recovers most loss.",
		Topics:  []string{"content refresh", "decay", "b2b", "software"},
	},
	{
		ID:      "kb-serp-features",
		Title:   "Winning SERP features beyond the ten blue links",
		Source:  "SeoForge Playbook",
		Snippet: "Structured data plus question-led H2 sections capture featured snippets and people-also-ask placements competitors overlook.",
		Topics:  []string{"serp features", "structured data", "media", "publishing"},
	},
}
