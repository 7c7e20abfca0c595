package model

// Rarity is the display tier of an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Achievement is a static catalog entry. Unlock state lives in the ledger,
// not here.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
}

// AchievementCatalog is the full static achievement set.
var AchievementCatalog = []Achievement{
	{ID: "first_game", Name: "First Responder", Description: "Complete your first training scenario.", Rarity: RarityCommon},
	{ID: "perfect_score", Name: "Flawless", Description: "Finish a scenario with a perfect safety score of 100.", Rarity: RarityRare},
	{ID: "quick_thinker", Name: "Quick Thinker", Description: "Answer correctly with plenty of time left on the clock.", Rarity: RarityRare},
	{ID: "level_5", Name: "Preparedness Veteran", Description: "Reach level 5.", Rarity: RarityLegendary},
	{ID: "fire_fighter", Name: "Fire Fighter", Description: "Score above 70 in an urban fire scenario.", Rarity: RarityCommon},
	{ID: "flood_expert", Name: "Flood Expert", Description: "Score above 70 in a flood response scenario.", Rarity: RarityCommon},
	{ID: "comms_check", Name: "Comms Check", Description: "Tune in to an emergency broadcast.", Rarity: RarityCommon},
	{ID: "chat_starter", Name: "Chat Starter", Description: "Send your first message in the communications hub.", Rarity: RarityCommon},
}

// AchievementByID returns the catalog entry for id, or nil.
func AchievementByID(id string) *Achievement {
	for i := range AchievementCatalog {
		if AchievementCatalog[i].ID == id {
			return &AchievementCatalog[i]
		}
	}
	return nil
}
