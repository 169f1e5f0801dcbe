package respond

import (
	"regexp"
)

// 具体的なパターンから順に適用する
var maskers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`AIza[0-9A-Za-z\-_]{20,}`), "AIza****"},
	{regexp.MustCompile(`(discord(?:app)?\.com/api/webhooks/)[^\s"':]+`), "${1}****"},
	{regexp.MustCompile(`(hooks\.slack\.com/services/)[^\s"']+`), "${1}****"},
	{regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`), "://$1:****@"},
}

// SanitizeError masks API keys, webhook tokens and DSN passwords in err's message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, m := range maskers {
		msg = m.re.ReplaceAllString(msg, m.repl)
	}
	return msg
}
