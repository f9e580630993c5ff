package grade

import (
	"strings"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const titleKey = "== Life Summary =="

var names = map[attr.Key]string{
	attr.CHR: "Appearance",
	attr.INT: "Intelligence",
	attr.STR: "Physique",
	attr.MNY: "Wealth",
	attr.SPR: "Happiness",
	attr.AGE: "Lifespan",
	attr.SUM: "Overall",
}

// Name returns the message key for a graded attribute's display name.
func Name(key attr.Key) string {
	if n, ok := names[key]; ok {
		return n
	}
	return string(key)
}

// Chinese labels are the ones the tables were originally written with.
var chinese = map[string]string{
	titleKey:       "==人生总结==",
	"Appearance":   "颜值",
	"Intelligence": "智力",
	"Physique":     "体质",
	"Wealth":       "家境",
	"Happiness":    "快乐",
	"Lifespan":     "享年",
	"Overall":      "总评",

	"Hell":      "地狱",
	"Torment":   "折磨",
	"Poor":      "不佳",
	"Average":   "普通",
	"Excellent": "优秀",
	"Rare":      "罕见",
	"Godlike":   "逆天",
	"Legendary": "传说",

	"Sea of Mind":       "识海",
	"Primordial Spirit": "元神",
	"Immortal Soul":     "仙魂",

	"Qi Condensation": "凝气",
	"Foundation":      "筑基",
	"Golden Core":     "金丹",
	"Nascent Soul":    "元婴",
	"Immortal Body":   "仙体",

	"Unhappy":  "不幸",
	"Happy":    "幸福",
	"Blissful": "极乐",
	"Destined": "天命",

	"Stillborn":         "胎死腹中",
	"Died Young":        "早夭",
	"Youth":             "少年",
	"Prime":             "盛年",
	"Middle Age":        "中年",
	"Sexagenarian":      "花甲",
	"Septuagenarian":    "古稀",
	"Octogenarian":      "杖朝",
	"Longevity":         "南山",
	"Ageless":           "不老",
	"Cultivator":        "修仙",
	"Immortal Lifespan": "仙寿",
}

var supportedTags = []language.Tag{
	language.English,
	language.Chinese,
}

var tagMatcher = language.NewMatcher(supportedTags)

func init() {
	for key, msg := range chinese {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}

// Supported returns the languages summaries can be rendered in.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Match returns the best supported language for the requested tags.
func Match(tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return language.English
	}
	_, idx, _ := tagMatcher.Match(tags...)
	return supportedTags[idx]
}

// ParseTag resolves a language name such as "zh-CN" or an Accept-Language
// header value, falling back to English.
func ParseTag(value string) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	return Match(tags...)
}

// Label translates a message key such as a tier judge. Keys are never
// treated as format strings, so labels from custom tables may contain '%'.
func Label(p *message.Printer, key string) string {
	return p.Sprintf(strings.ReplaceAll(key, "%", "%%"))
}

// Printer returns a message printer for the best match of tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Match(tag))
}
