package domain

import "time"

// AgeGroup narrows question difficulty and tone to an audience.
type AgeGroup string

const (
	AgeChild AgeGroup = "child"
	AgeTeen  AgeGroup = "teen"
	AgeAdult AgeGroup = "adult"
)

// Difficulty of a generated question batch.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Language is one of the supported UI languages.
type Language string

const (
	LangArabic  Language = "ar"
	LangEnglish Language = "en"
	LangFrench  Language = "fr"
	LangSpanish Language = "es"
	LangGerman  Language = "de"
)

// LanguageRing is the fixed cycle order used by the language switcher.
var LanguageRing = []Language{LangArabic, LangEnglish, LangFrench, LangSpanish, LangGerman}

// EnglishName returns the language's English name for prompt building.
func (l Language) EnglishName() string {
	switch l {
	case LangArabic:
		return "Arabic"
	case LangEnglish:
		return "English"
	case LangFrench:
		return "French"
	case LangSpanish:
		return "Spanish"
	case LangGerman:
		return "German"
	}
	return "English"
}

// Next advances circularly through LanguageRing.
func (l Language) Next() Language {
	for i, lang := range LanguageRing {
		if lang == l {
			return LanguageRing[(i+1)%len(LanguageRing)]
		}
	}
	return LanguageRing[0]
}

// Category groups questions by topic. Names are localized per language.
type Category struct {
	ID    string              `json:"id"`
	Name  map[Language]string `json:"name"`
	Icon  string              `json:"icon"`
	Color string              `json:"color"`
}

// DailyCategoryID marks the synthetic mixed-topic daily challenge category.
const DailyCategoryID = "daily"

// IsDaily reports whether the category is the synthetic daily challenge.
func (c Category) IsDaily() bool {
	return c.ID == DailyCategoryID
}

// LocalizedName returns the category name in lang, falling back to English.
func (c Category) LocalizedName(lang Language) string {
	if name, ok := c.Name[lang]; ok {
		return name
	}
	return c.Name[LangEnglish]
}

// DailyCategory builds the synthetic category used for daily challenges.
func DailyCategory() Category {
	return Category{
		ID: DailyCategoryID,
		Name: map[Language]string{
			LangArabic:  "تحدي اليوم",
			LangEnglish: "Daily Challenge",
			LangFrench:  "Défi Quotidien",
			LangSpanish: "Desafío Diario",
			LangGerman:  "Tages-Herausforderung",
		},
		Icon:  "📅",
		Color: "bg-amber-600",
	}
}

// Categories is the fixed topic catalog offered on the category screen.
func Categories() []Category {
	return []Category{
		{ID: "football", Name: map[Language]string{LangArabic: "كرة القدم", LangEnglish: "Football", LangFrench: "Football", LangSpanish: "Fútbol", LangGerman: "Fußball"}, Icon: "⚽", Color: "bg-green-500"},
		{ID: "science", Name: map[Language]string{LangArabic: "العلوم", LangEnglish: "Science", LangFrench: "Sciences", LangSpanish: "Ciencia", LangGerman: "Wissenschaft"}, Icon: "🔬", Color: "bg-blue-500"},
		{ID: "chemistry", Name: map[Language]string{LangArabic: "الكيمياء", LangEnglish: "Chemistry", LangFrench: "Chimie", LangSpanish: "Química", LangGerman: "Chemie"}, Icon: "🧪", Color: "bg-purple-500"},
		{ID: "technology", Name: map[Language]string{LangArabic: "تكنولوجيا", LangEnglish: "Technology", LangFrench: "Technologie", LangSpanish: "Tecnología", LangGerman: "Technologie"}, Icon: "💻", Color: "bg-cyan-600"},
		{ID: "movies", Name: map[Language]string{LangArabic: "أفلام", LangEnglish: "Movies", LangFrench: "Films", LangSpanish: "Películas", LangGerman: "Filme"}, Icon: "🎬", Color: "bg-rose-600"},
		{ID: "history", Name: map[Language]string{LangArabic: "التاريخ", LangEnglish: "History", LangFrench: "Histoire", LangSpanish: "Historia", LangGerman: "Geschichte"}, Icon: "📜", Color: "bg-amber-500"},
		{ID: "geography", Name: map[Language]string{LangArabic: "الجغرافيا", LangEnglish: "Geography", LangFrench: "Géographie", LangSpanish: "Geografía", LangGerman: "Geografie"}, Icon: "🗺️", Color: "bg-teal-500"},
		{ID: "art", Name: map[Language]string{LangArabic: "الفنون", LangEnglish: "Art", LangFrench: "Art", LangSpanish: "Arte", LangGerman: "Kunst"}, Icon: "🎨", Color: "bg-pink-500"},
		{ID: "music", Name: map[Language]string{LangArabic: "الموسيقى", LangEnglish: "Music", LangFrench: "Musique", LangSpanish: "Música", LangGerman: "Musik"}, Icon: "🎵", Color: "bg-indigo-500"},
		{ID: "general", Name: map[Language]string{LangArabic: "ثقافة عامة", LangEnglish: "General Knowledge", LangFrench: "Culture Générale", LangSpanish: "Cultura General", LangGerman: "Allgemeinwissen"}, Icon: "🌍", Color: "bg-red-500"},
	}
}

// CategoryByID looks up a catalog category (including the daily category).
func CategoryByID(id string) (Category, bool) {
	if id == DailyCategoryID {
		return DailyCategory(), true
	}
	for _, c := range Categories() {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Question is a single multiple-choice question. Immutable once fetched;
// owned by the active session and discarded on reset.
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint"`
}

// QuestionRequest describes one batch fetch from the question source.
type QuestionRequest struct {
	Age        AgeGroup
	Category   Category
	Language   Language
	Difficulty Difficulty
}

// MediaType classifies an optional comment attachment.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaFile  MediaType = "file"
)

// LeaderboardEntry is an immutable score record saved after results.
type LeaderboardEntry struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Score      int        `json:"score"`
	Total      int        `json:"total"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Age        AgeGroup   `json:"age"`
	Date       time.Time  `json:"date"`
}

// CommunityComment is one entry of the append-only community feed.
type CommunityComment struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	Lang      Language  `json:"lang"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Date      time.Time `json:"date"`
}

// UserStats accumulates lifetime play statistics for one device.
type UserStats struct {
	TotalGames               int     `json:"totalGames"`
	TotalCorrect             int     `json:"totalCorrect"`
	TotalQuestions           int     `json:"totalQuestions"`
	DailyChallengesCompleted int     `json:"dailyChallengesCompleted"`
	BestScorePercentage      float64 `json:"bestScorePercentage"`
}

// Record folds one completed game into the stats. BestScorePercentage is a
// running maximum.
func (s UserStats) Record(correct, total int, isDaily bool) UserStats {
	updated := UserStats{
		TotalGames:               s.TotalGames + 1,
		TotalCorrect:             s.TotalCorrect + correct,
		TotalQuestions:           s.TotalQuestions + total,
		DailyChallengesCompleted: s.DailyChallengesCompleted,
		BestScorePercentage:      s.BestScorePercentage,
	}
	if isDaily {
		updated.DailyChallengesCompleted++
	}
	if total > 0 {
		pct := float64(correct) / float64(total) * 100
		if pct > updated.BestScorePercentage {
			updated.BestScorePercentage = pct
		}
	}
	return updated
}

// DailyRewardScore is the minimum score that earns the daily challenge reward.
const DailyRewardScore = 7

// QuestionsPerBatch is the fixed size of a generated question batch.
const QuestionsPerBatch = 10
