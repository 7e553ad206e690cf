package corpus

// Recipe 食譜
type Recipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Time        int      `json:"time"`
	Difficulty  string   `json:"difficulty"`
	Steps       []string `json:"steps"`
}

// 難度字串到數值的對應：초급(初級)=1、중급(中級)=2、고급(高級)=3
var difficultyLevels = map[string]int{
	"초급": 1,
	"중급": 2,
	"고급": 3,
}

// DifficultyLevel 回傳數值化難度，未知難度視為中級
func (r Recipe) DifficultyLevel() int {
	if level, ok := difficultyLevels[r.Difficulty]; ok {
		return level
	}
	return 2
}
