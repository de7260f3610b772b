package dashboard

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/bradfitz/iter"
	"github.com/gofiber/template/html/v2"
)

//go:embed template/*.html
var templateFS embed.FS

// NewEngine loads the page templates from dir, or from the copies built into
// the binary when dir is empty.
func NewEngine(dir string) *html.Engine {
	var engine *html.Engine
	if dir != "" {
		engine = html.New(dir, ".html")
	} else {
		sub, _ := fs.Sub(templateFS, "template")
		engine = html.NewFileSystem(http.FS(sub), ".html")
	}
	engine.AddFunc("N", iter.N)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("num", formatNumber)
	return engine
}

func formatNumber(v float64) string {
	if v >= 100 || v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
