// Package interpreter maps slash-command verbs onto record store queries and
// generation calls. It is stateless: every Process call is an independent
// request/response.
package interpreter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"go.uber.org/zap"
)

const (
	recentLimit = 5

	// Above chunkThreshold meaningful records, summarization goes through a
	// two-level map-reduce in chunks of chunkSize so no single generation
	// request overruns the token budget.
	chunkThreshold = 20
	chunkSize      = 10

	// Per-record caps on the text handed to the model.
	chunkedRecordLimit = 500
	directRecordLimit  = 1000
)

var (
	commandPattern   = regexp.MustCompile(`^/([a-z]+)(?:\s+([\s\S]*))?$`)
	summarizePattern = regexp.MustCompile(`(?i)last\s+(\d+)\s+(day|days|week|weeks|month|months)`)
	tagPattern       = regexp.MustCompile(`^(\S+)\s+([\s\S]+)$`)
)

// ExtractCommand splits a slash-prefixed input line into its verb and the
// remaining text. ok is false when the line is not a command.
func ExtractCommand(input string) (verb string, content string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "//") {
		return "//", strings.TrimSpace(trimmed[2:]), true
	}
	match := commandPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", "", false
	}
	return match[1], strings.TrimSpace(match[2]), true
}

type Interpreter struct {
	options   Options
	store     store.Store
	generator generator.Generator
}

func New(st store.Store, gen generator.Generator, opts ...Option) *Interpreter {
	options := NewOptions(opts...)

	return &Interpreter{
		options:   options,
		store:     st,
		generator: gen,
	}
}

// Process runs the verb against the record store or the generation client
// and returns the response text. Failures come back as the typed errors in
// errors.go plus StorageError/GenerationError from the collaborators.
func (i *Interpreter) Process(ctx context.Context, verb string, content string) (string, error) {
	switch strings.ToLower(verb) {
	case "recall", "find":
		return i.recall(ctx, content)
	case "summarize":
		return i.summarize(ctx, content)
	case "tag":
		return i.tag(ctx, content)
	case "import":
		return i.importFile(content), nil
	case "journal", "note":
		return i.note(verb, content)
	case "help", "//":
		return helpText, nil
	default:
		return "", &UnknownCommandError{Verb: verb}
	}
}

func (i *Interpreter) recall(ctx context.Context, content string) (string, error) {
	if len(content) == 0 {
		return "", &InvalidCommandFormatError{
			Hint: "Please specify what to recall. Examples: /recall #tag, /recall keyword, or /recall recent",
		}
	}

	switch {
	case strings.HasPrefix(content, "#"):
		tag := strings.TrimSpace(content[1:])

		results, err := i.store.GetByTag(ctx, tag)
		if err != nil {
			return "", err
		}

		if len(results) == 0 {
			return fmt.Sprintf("No thoughts found with tag %q", tag), nil
		}

		meaningful := FilterMeaningful(results)
		return fmt.Sprintf("Found %d thoughts with tag %q:\n\n%s", len(meaningful), tag, listThoughts(meaningful)), nil

	case strings.EqualFold(content, "recent"):
		results, err := i.store.GetRecent(ctx, recentLimit)
		if err != nil {
			return "", err
		}

		if len(results) == 0 {
			return "No thoughts found in your database", nil
		}

		meaningful := FilterMeaningful(results)
		return fmt.Sprintf("Your %d most recent thoughts:\n\n%s", len(meaningful), listThoughts(meaningful)), nil

	default:
		results, err := i.store.SearchByContent(ctx, content)
		if err != nil {
			return "", err
		}

		if len(results) == 0 {
			return fmt.Sprintf("No thoughts found matching %q", content), nil
		}

		meaningful := FilterMeaningful(results)
		return fmt.Sprintf("Found %d thoughts matching %q:\n\n%s", len(meaningful), content, listThoughts(meaningful)), nil
	}
}

func (i *Interpreter) summarize(ctx context.Context, content string) (string, error) {
	if err := i.requireApiKey(); err != nil {
		return "", err
	}

	match := summarizePattern.FindStringSubmatch(content)
	if match == nil {
		return "", &InvalidCommandFormatError{
			Hint: "Please specify a time period. Example: /summarize last 7 days",
		}
	}

	count, err := strconv.Atoi(match[1])
	if err != nil || count < 1 {
		return "", &InvalidCommandFormatError{
			Hint: "Please specify a time period. Example: /summarize last 7 days",
		}
	}
	unit := strings.ToLower(match[2])

	now := i.options.Now()
	var then time.Time
	switch {
	case strings.HasPrefix(unit, "day"):
		then = now.AddDate(0, 0, -count)
	case strings.HasPrefix(unit, "week"):
		then = now.AddDate(0, 0, -count*7)
	default:
		then = now.AddDate(0, -count, 0)
	}

	all, err := i.store.GetAll(ctx)
	if err != nil {
		return "", err
	}

	var windowed []store.Thought
	for _, t := range all {
		if !t.Timestamp.Before(then) && !t.Timestamp.After(now) {
			windowed = append(windowed, t)
		}
	}

	meaningful := FilterMeaningful(windowed)
	if len(meaningful) == 0 {
		return fmt.Sprintf("No meaningful thoughts found in the last %d %s.", count, unit), nil
	}

	if len(meaningful) > chunkThreshold {
		return i.summarizeChunked(ctx, meaningful, count, unit)
	}

	prompt := fmt.Sprintf(
		"Summarize these thoughts from the last %d %s:\n\n%s",
		count,
		unit,
		renderThoughts(meaningful, directRecordLimit),
	)

	return i.generator.Generate(ctx, prompt)
}

// summarizeChunked summarizes each chunk independently on the cheap model,
// then synthesizes the chunk summaries into one final summary.
func (i *Interpreter) summarizeChunked(ctx context.Context, thoughts []store.Thought, count int, unit string) (string, error) {
	var chunks [][]store.Thought
	for start := 0; start < len(thoughts); start += chunkSize {
		end := start + chunkSize
		if end > len(thoughts) {
			end = len(thoughts)
		}
		chunks = append(chunks, thoughts[start:end])
	}

	i.options.Logger.Debug("chunked summarization", zap.Int("thoughts", len(thoughts)), zap.Int("chunks", len(chunks)))

	summaries := make([]string, 0, len(chunks))
	for n, chunk := range chunks {
		prompt := fmt.Sprintf(
			"Summarize these %d thoughts (chunk %d/%d):\n\n%s",
			len(chunk),
			n+1,
			len(chunks),
			renderThoughts(chunk, chunkedRecordLimit),
		)

		summary, err := i.generator.Generate(ctx, prompt, generator.WithCheapModel())
		if err != nil {
			i.options.Logger.Warn("chunk summary failed", zap.Int("chunk", n+1), zap.Error(err))
			summary = fmt.Sprintf("[Error summarizing chunk %d]", n+1)
		}

		summaries = append(summaries, summary)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are summarizing a user's thoughts over the past %d %s.\n\n", count, unit)
	sb.WriteString("Below are summaries of chunks of thoughts from this period. Please create a cohesive final summary that includes key themes, insights, and patterns:\n\n")
	for n, summary := range summaries {
		fmt.Fprintf(&sb, "Chunk %d Summary:\n%s\n\n", n+1, summary)
	}

	return i.generator.Generate(ctx, strings.TrimSpace(sb.String()))
}

func (i *Interpreter) tag(ctx context.Context, content string) (string, error) {
	if err := i.requireApiKey(); err != nil {
		return "", err
	}

	if len(content) == 0 {
		return "", &InvalidCommandFormatError{
			Hint: "Please specify a tag and a thought. Example: /tag crypto This is my thought about cryptocurrency",
		}
	}

	match := tagPattern.FindStringSubmatch(content)
	if match == nil {
		return "", &InvalidCommandFormatError{
			Hint: "Invalid format. Please use: /tag tagname Your thought content",
		}
	}

	name := strings.ToLower(match[1])
	text := match[2]

	response, err := i.generator.Generate(ctx, text)
	if err != nil {
		return "", err
	}

	summary, err := i.generator.Summarize(ctx, text)
	if err != nil {
		return "", err
	}

	thought := store.Thought{
		Timestamp: i.options.Now().UTC(),
		Input:     text,
		Output:    response,
		Tags:      []string{name},
		Summary:   summary,
	}

	if _, err := i.store.Save(ctx, thought); err != nil {
		return "", err
	}

	return response, nil
}

var (
	importFromPattern = regexp.MustCompile(`from:([^,\s]+)`)
	importTagPattern  = regexp.MustCompile(`tag:([^,\s]+)`)
	importTypePattern = regexp.MustCompile(`type:([^,\s]+)`)
)

// importFile is text construction only: the actual file handling lives with
// the presentation layer.
func (i *Interpreter) importFile(content string) string {
	if len(content) == 0 {
		return "Ready to import. Provide parameters like: from:filename.txt tag:mytag"
	}

	fileName := "file"
	if match := importFromPattern.FindStringSubmatch(content); match != nil {
		fileName = match[1]
	}

	tag := "import"
	if match := importTagPattern.FindStringSubmatch(content); match != nil {
		tag = match[1]
	}

	fileType := "text"
	if match := importTypePattern.FindStringSubmatch(content); match != nil {
		fileType = strings.ToLower(match[1])
	}

	if fileType == "image" {
		return fmt.Sprintf("Image %q has been imported. The analysis of the image will be processed in your next message. You can find this information later using /recall #%s or by searching for specific content.", fileName, tag)
	}

	return fmt.Sprintf("File %q has been imported. Its contents will be processed and added to your knowledge base. You can find this information later using /recall #%s or by searching for specific content.", fileName, tag)
}

func (i *Interpreter) note(verb string, content string) (string, error) {
	if len(content) == 0 {
		return "", &InvalidCommandFormatError{Hint: "Please add some content to your note."}
	}
	return fmt.Sprintf("Your %s has been saved.", strings.ToLower(verb)), nil
}

func (i *Interpreter) requireApiKey() error {
	if len(i.options.ApiKey) == 0 {
		return ErrMissingApiKey
	}
	return nil
}

func listThoughts(thoughts []store.Thought) string {
	lines := make([]string, 0, len(thoughts))
	for _, t := range thoughts {
		gist := t.Summary
		if len(gist) == 0 {
			gist = truncate(t.Input, 80)
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", gist, t.Timestamp.Format("1/2/2006")))
	}
	return strings.Join(lines, "\n")
}

func renderThoughts(thoughts []store.Thought, limit int) string {
	entries := make([]string, 0, len(thoughts))
	for _, t := range thoughts {
		entries = append(entries, fmt.Sprintf(
			"Date: %s\nThought: %s\nResponse: %s",
			t.Timestamp.Format("1/2/2006"),
			truncate(t.Input, limit),
			truncate(t.Output, limit),
		))
	}
	return strings.Join(entries, "\n\n")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

const helpText = `## Synapse Mind Commands

### Search & Recall
- **/recall #tag** - Search thoughts by specific tag
- **/recall keyword** - Search thoughts by keyword
- **/recall recent** - Show your most recent thoughts
- **/find** - Alias for /recall

### Saving Information
- **/tag tagname Your thought** - Save a tagged thought with a generated response
- **/import** - Import content from files
- **/journal** / **/note** - Save a quick note

### Analysis & Summaries
- **/summarize last 7 days** - Get a summary of recent thoughts

### Help
- **/help** - Show this command list
- **//** - Alias for /help

**Note**: Some commands require a generation API key.

**Examples**:
- **/recall #work** - Find all thoughts tagged with "work"
- **/summarize last 30 days** - Summarize the last month's thoughts`
