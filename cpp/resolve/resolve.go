package resolve

import (
	"path/filepath"
	"strings"

	"github.com/qiniu/x/errors"
)

var (
	ErrUnknownLanguage = errors.New("unknown source language: no default output suffix")
)

// -----------------------------------------------------------------------------

// Cmd is a resolved delegate invocation: the command prefix to spawn and the
// guessed source language of the translation unit.
type Cmd struct {
	Prefix []string
	Lang   string // "c" or "c++"
}

// Suffix returns the temp-file suffix for a guessed language.
func Suffix(lang string) (string, error) {
	switch lang {
	case "c":
		return "i", nil
	case "c++":
		return "ii", nil
	}
	return "", errors.NewWith(ErrUnknownLanguage, `Suffix(lang)`, -2, "resolve.Suffix", lang)
}

// Resolve selects the delegate binary and guesses the source language from
// hints already on the command line. realcpp, when non-empty, is an explicit
// command prefix overriding the default delegate. The result is
// deterministic for a given input.
func Resolve(realcpp string, args []string) (ret Cmd, err error) {
	ret.Lang = guessLang(args)
	if _, err = Suffix(ret.Lang); err != nil {
		return
	}
	if realcpp != "" {
		ret.Prefix = strings.Fields(realcpp)
	} else {
		ret.Prefix = []string{"cpp"}
	}
	return
}

func guessLang(args []string) string {
	lang := "c"
	if len(args) > 0 {
		base := filepath.Base(args[0])
		if strings.Contains(base, "++") {
			lang = "c++"
		}
	}
	for i := 1; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-x":
			if i+1 < len(args) {
				lang = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "-x"):
			lang = arg[2:]
		case strings.HasPrefix(arg, "-std="):
			if std := arg[5:]; strings.HasPrefix(std, "c++") || strings.HasPrefix(std, "gnu++") {
				lang = "c++"
			}
		}
	}
	return lang
}
