package model

// Category is a hazard training scenario type.
type Category struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	AchievementID string `json:"achievementId,omitempty"` // unlocked on score > 70
}

// Categories is the static scenario catalog.
var Categories = []Category{
	{Key: "urbanFire", Title: "Urban Fire Emergency", AchievementID: "fire_fighter"},
	{Key: "floodResponse", Title: "Flood Response", AchievementID: "flood_expert"},
	{Key: "roadAccident", Title: "Road Accident Response"},
	{Key: "marketplaceStampede", Title: "Marketplace Stampede"},
}

// CategoryByKey returns the catalog entry for key, or nil.
func CategoryByKey(key string) *Category {
	for i := range Categories {
		if Categories[i].Key == key {
			return &Categories[i]
		}
	}
	return nil
}

// TimerOptions are the only permitted per-question timer durations in
// seconds. 0 disables the timer.
var TimerOptions = []int{0, 15, 20, 30}

// ValidTimer reports whether sec is a permitted timer duration.
func ValidTimer(sec int) bool {
	for _, opt := range TimerOptions {
		if sec == opt {
			return true
		}
	}
	return false
}
