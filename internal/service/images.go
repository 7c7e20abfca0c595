package service

import "math/rand"

// imageManifest maps category keys to their scenario illustration pools.
// Images are static assets; only the pick is randomized.
var imageManifest = map[string][]string{
	"urbanFire": {
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F6085498f29dd439f9867fed34e32e344?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Fef43c8779b6e4827a9845d40dfc7f922?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F8bd81e7b19f746c495145d8019152905?format=webp&width=800",
	},
	"floodResponse": {
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Fdd7b93a2f6114362a33aa65035b5da28?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F999d11b720fc45d799fe82d37e2bf735?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F4dfc644b850e4a4d8638a6bf4823f40c?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F9a216ec9bed747b396de6365d2a8ee90?format=webp&width=800",
	},
	"roadAccident": {
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Fca2d5ffcdcb54f5da58c02bc54241cf2?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Fe5f843f586ae49ed8615f205e742146f?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F8d75b88d79bc4d969de07b09971520a9?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Ffecc5775bb8c453baa8116e1bd6efc37?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F7cd1d8c688e64164887eae8d71ae3469?format=webp&width=800",
	},
	"marketplaceStampede": {
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F0266b766462947f985289b2b5982fe1c?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2Fb5792367c069485a963ced30c33c35fe?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F19664f417326416381465161d9aff87d?format=webp&width=800",
		"https://cdn.builder.io/api/v1/image/assets%2F72fdc3fe902a491fb76060ce278d01d8%2F331c2e9d3dd841268f1550aa0a6c5112?format=webp&width=800",
	},
}

// ScenarioImage returns a random illustration URL for the category, falling
// back to the road-accident pool for unknown keys.
func ScenarioImage(categoryKey string) string {
	pool, ok := imageManifest[categoryKey]
	if !ok || len(pool) == 0 {
		pool = imageManifest["roadAccident"]
	}
	return pool[rand.Intn(len(pool))]
}
