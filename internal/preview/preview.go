// Package preview serves bot-friendly Open Graph HTML to social-media
// crawlers so shared links unfurl with a title, description and image.
// Regular browsers fall through to the normal client routing.
package preview

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// crawlerAgents is the fixed allow-list of user-agent substrings treated as
// social-media crawlers. Matching is case-insensitive substring.
var crawlerAgents = []string{
	"facebookexternalhit",
	"facebookcatalog",
	"twitterbot",
	"whatsapp",
	"telegrambot",
	"discordbot",
	"slackbot",
	"linkedinbot",
	"pinterest",
	"google-structured-data",
}

// IsCrawler reports whether the user agent matches the crawler allow-list.
func IsCrawler(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, bot := range crawlerAgents {
		if strings.Contains(ua, bot) {
			return true
		}
	}
	return false
}

// Meta holds the Open Graph fields rendered into the preview page.
type Meta struct {
	Title       string
	Description string
	ImageURL    string
	URL         string
}

var pageTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="website">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
{{if .ImageURL}}<meta property="og:image" content="{{.ImageURL}}">{{end}}
<meta property="og:url" content="{{.URL}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
{{if .ImageURL}}<meta name="twitter:image" content="{{.ImageURL}}">{{end}}
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
</body>
</html>
`))

// Middleware intercepts crawler requests for shareable pages and responds
// with pre-rendered Open Graph HTML. Everything else passes through.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsCrawler(c.GetHeader("User-Agent")) {
			c.Next()
			return
		}

		meta, ok := lookupMeta(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		meta.URL = c.Request.URL.String()
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := pageTemplate.Execute(c.Writer, meta); err != nil {
			log.Printf("rendering preview for %s: %v", c.Request.URL.Path, err)
		}
		// The response is taken over either way; a render error must not
		// let downstream handlers append to it.
		c.Abort()
	}
}

// lookupMeta resolves a shareable path into preview metadata. Unknown paths
// and missing records return ok=false so the request falls through.
func lookupMeta(path string) (Meta, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return Meta{}, false
	}

	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Meta{}, false
	}

	switch parts[0] {
	case "jerseys":
		var jersey models.Jersey
		if err := database.DB.First(&jersey, uint(id)).Error; err != nil {
			return Meta{}, false
		}
		return Meta{
			Title:       fmt.Sprintf("%s %s %s kit", jersey.Club, jersey.Season, jersey.Kind),
			Description: jersey.Description,
			ImageURL:    jersey.ImageURL,
		}, true
	case "spots":
		var spot models.Spot
		if err := database.DB.First(&spot, uint(id)).Error; err != nil {
			return Meta{}, false
		}
		return Meta{
			Title:       spot.Title,
			Description: fmt.Sprintf("Spotted for %.2f %s. %s", spot.Price, spot.Currency, spot.Description),
			ImageURL:    spot.ImageURL,
		}, true
	case "bounties":
		var bounty models.Bounty
		if err := database.DB.First(&bounty, uint(id)).Error; err != nil {
			return Meta{}, false
		}
		return Meta{
			Title:       "Bounty: " + bounty.Title,
			Description: bounty.Description,
		}, true
	case "users":
		var user models.User
		if err := database.DB.First(&user, uint(id)).Error; err != nil {
			return Meta{}, false
		}
		name := user.DisplayName
		if name == "" {
			name = user.Username
		}
		return Meta{
			Title:       name + " on Kit Locker",
			Description: fmt.Sprintf("Browse %s's jersey collection", user.Username),
			ImageURL:    user.AvatarURL,
		}, true
	}

	return Meta{}, false
}
