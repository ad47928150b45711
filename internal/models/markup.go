package models

import "github.com/frustra/bbcode"

// Auto-close unterminated tags and drop stray closing tags.
var bbcodeCompiler = bbcode.NewCompiler(true, true)

// RenderBBCode renders a post body written in BBCode to escaped HTML.
func RenderBBCode(body string) string {
	return bbcodeCompiler.Compile(body)
}
