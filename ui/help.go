package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"maiveui/internal/errors"
)

// helpTopic is one configuration-help article, authored in markdown
type helpTopic struct {
	Slug  string
	Title string
	Body  string
}

var helpTopics = []helpTopic{
	{
		Slug:  "model-type",
		Title: "Model Type",
		Body: `**MAIVE** corrects for publication bias and spurious precision by
instrumenting reported variances with sample sizes.

**WAIVE** is the weighted variant. It always instruments, runs the first
stage in logarithms and applies the PET-PEESE correction.

**WLS** is a plain weighted least squares benchmark without instrumenting.`,
	},
	{
		Slug:  "weights",
		Title: "Weighting Scheme",
		Body: `*Equal weights* treat every estimate alike. *Standard weights* use
inverse variance. *Adjusted weights* use the instrumented variances and are
therefore only available while instrumenting is on. *Study weights* give each
study equal total weight regardless of how many estimates it reports.`,
	},
	{
		Slug:  "anderson-rubin",
		Title: "Anderson-Rubin Confidence Interval",
		Body: `The Anderson-Rubin interval stays valid when the instrument is weak.
It is available with instrumenting and equal weights; in other configurations
the estimator cannot compute it and the toggle is hidden.`,
	},
	{
		Slug:  "standard-errors",
		Title: "Standard Error Treatment",
		Body: `Clustered treatments account for dependence between estimates from the
same study and need a study ID column. *Clustered using CR2* applies a
small-sample correction. *Bootstrap* resamples at the study level and
additionally reports bootstrap confidence intervals.`,
	},
	{
		Slug:  "winsorize",
		Title: "Winsorization",
		Body: `Winsorizing caps the most extreme effect sizes at the chosen percentile
before estimation. Zero disables it. Use it sparingly; it trades robustness
against outliers for a mechanical change to the data.`,
	},
	{
		Slug:  "filtering",
		Title: "Subsample Filters",
		Body: `Filters restrict the run to rows matching your conditions. Conditions
compare any uploaded column, numerically when both sides parse as numbers and
as case-insensitive text otherwise. Incomplete conditions are ignored.`,
	},
}

func renderMarkdown(source string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(source), p, renderer))
}

// handleHelpIndex lists the available help topics
func (s *Server) handleHelpIndex(c *gin.Context) {
	topics := make([]gin.H, len(helpTopics))
	for i, topic := range helpTopics {
		topics[i] = gin.H{"slug": topic.Slug, "title": topic.Title}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// handleHelpTopic renders one topic as HTML
func (s *Server) handleHelpTopic(c *gin.Context) {
	slug := c.Param("topic")
	for _, topic := range helpTopics {
		if topic.Slug == slug {
			c.JSON(http.StatusOK, gin.H{
				"slug":  topic.Slug,
				"title": topic.Title,
				"html":  renderMarkdown(topic.Body),
			})
			return
		}
	}
	respondError(c, errors.NotFound("help topic"))
}
