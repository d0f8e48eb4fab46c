package heuristic

// Archaic English and classical Chinese vocabulary. Any hit pulls the score
// toward human authorship.
var literaryMarkers = []string{
	"然而", "既然", "莫若", "其實", "況且", "而況", "不料", "豈料",
	"想不到", "怎料", "誰知", "卻", "竟", "竟然", "偏偏", "恰好",
	"恰恰", "正好", "湊巧", "怪不得", "也難怪", "也怪得",
	"橫豎", "仔細", "戰慄", "歪歪斜斜", "吃人", "字縫",
	"翻開", "歷史", "仁義", "道德", "滿本",
	"alas", "behold", "hark", "lo", "methinks", "perchance",
	"forsooth", "thus", "verily", "hence", "whence", "thence",
	"thee", "thou", "thy", "hath", "doth", "wherefore",
}

// First-person and opinion phrases.
var personalMarkers = []string{
	"我", "我覺得", "我認為", "我想", "我發現", "我看",
	"i think", "i feel", "i believe", "in my opinion",
}

var functionWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "of": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {},
}

const punctuationRunes = ".,!?;:'\"—-。！？；：‘’“”"
