// Command ltcheck checks text against a LanguageTool server.
//
// Usage:
//
//	echo "Some phrase with a smal mistake." | ltcheck check
//	ltcheck check --language en-US report.txt
//	ltcheck check --data '{"annotation":[{"text":"A "},{"markup":"<b>"}]}'
//	ltcheck languages
//	ltcheck words add --username you --api-key KEY someword
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/langtools/ltcheck/internal/util"
	"github.com/langtools/ltcheck/ltcheck"
)

const version = "0.1.0"

// CLI defines the command-line interface for ltcheck.
var CLI struct {
	// Server options
	Hostname string `help:"Server hostname." default:"${default_hostname}" env:"LANGUAGETOOL_HOSTNAME"`
	Port     string `short:"p" help:"Server port, empty for none." default:"" env:"LANGUAGETOOL_PORT"`
	LogLevel string `help:"Log level." default:"warn" enum:"debug,info,warn,error"`

	Check     CheckCmd     `cmd:"" help:"Check text for grammar and style issues"`
	Languages LanguagesCmd `cmd:"" aliases:"lang" help:"List languages supported by the server"`
	Ping      PingCmd      `cmd:"" help:"Ping the server and report the round-trip time"`
	Words     WordsGroup   `cmd:"" help:"Personal dictionary operations (list, add, delete)"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

type appContext struct {
	client *ltcheck.ServerClient
}

// CheckCmd checks raw text, annotated data, files, or stdin.
type CheckCmd struct {
	Text string `short:"t" help:"Raw text to check." xor:"input"`
	Data string `short:"d" help:"Annotated JSON document to check." xor:"input"`

	Language       string `short:"l" default:"auto" help:"Language code, or auto."`
	MaxLength      int    `default:"1500" help:"Maximum fragment size in bytes before splitting."`
	SplitPattern   string `help:"Pattern to split overlong input on, blank paragraph break by default."`
	MaxSuggestions int    `default:"5" help:"Replacement suggestions kept per match; negative keeps all."`
	Raw            bool   `short:"r" help:"Print the raw JSON response instead of a listing."`
	Picky          bool   `help:"Activate picky rules."`

	MotherTongue       string   `help:"Your native language, for false-friend checks."`
	PreferredVariants  []string `help:"Preferred variants for language auto-detection."`
	EnabledRules       []string `help:"Rule IDs to enable."`
	DisabledRules      []string `help:"Rule IDs to disable."`
	EnabledCategories  []string `help:"Category IDs to enable."`
	DisabledCategories []string `help:"Category IDs to disable."`
	EnabledOnly        bool     `help:"Use only enabled rules and categories."`

	Filenames []string `arg:"" optional:"" type:"existingfile" help:"Files to check instead of --text/--data/stdin."`
}

func (cmd *CheckCmd) baseRequest() ltcheck.CheckRequest {
	req := ltcheck.NewCheckRequest().WithLanguage(cmd.Language)
	req.MotherTongue = cmd.MotherTongue
	req.PreferredVariants = cmd.PreferredVariants
	req.EnabledRules = cmd.EnabledRules
	req.DisabledRules = cmd.DisabledRules
	req.EnabledCategories = cmd.EnabledCategories
	req.DisabledCategories = cmd.DisabledCategories
	req.EnabledOnly = cmd.EnabledOnly
	if cmd.Picky {
		req.Level = ltcheck.LevelPicky
	}
	return req
}

func (cmd *CheckCmd) Run(app *appContext) error {
	ctx := context.Background()
	client := app.client.WithMaxSuggestions(cmd.MaxSuggestions)
	if cmd.SplitPattern == "" {
		cmd.SplitPattern = "\n\n"
	}

	// ANNOTATED DATA: checked as a single request, never split below the
	// annotation level unless the splitter finds text breakpoints.
	if cmd.Data != "" {
		req, err := cmd.baseRequest().WithDataString(cmd.Data)
		if err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return err
		}
		resp, err := client.CheckSplit(ctx, req, cmd.MaxLength, cmd.SplitPattern)
		if err != nil {
			return err
		}
		return printJSON(resp)
	}

	// RAW TEXT or STDIN
	if len(cmd.Filenames) == 0 {
		text := cmd.Text
		if text == "" {
			in, err := readStdin()
			if err != nil {
				return err
			}
			text = in
		}
		return cmd.checkOne(ctx, client, text, "")
	}

	// FILES
	for _, filename := range cmd.Filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		if err := cmd.checkOne(ctx, client, string(data), filename); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *CheckCmd) checkOne(ctx context.Context, client *ltcheck.ServerClient, text, origin string) error {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "ltcheck: input is empty, skipping")
		return nil
	}

	req := cmd.baseRequest().WithText(text)
	if err := req.Validate(); err != nil {
		return err
	}
	resp, err := client.CheckSplit(ctx, req, cmd.MaxLength, cmd.SplitPattern)
	if err != nil {
		return err
	}
	if cmd.Raw {
		return printJSON(resp)
	}
	printMatches(resp, origin)
	return nil
}

// printMatches renders one line per match plus context, locating each
// match by the line/column the position mapper attached.
func printMatches(resp ltcheck.CheckResponse, origin string) {
	if len(resp.Matches) == 0 {
		fmt.Println("No errors were found in provided text")
		return
	}
	if origin == "" {
		origin = "<input>"
	}
	for _, m := range resp.Matches {
		line, col := 0, 0
		if m.MoreContext != nil {
			line, col = m.MoreContext.LineNumber, m.MoreContext.LineOffset
		}
		fmt.Printf("%s:%d:%d: %s: %s\n", origin, line, col, m.Rule.ID, m.Message)
		fmt.Printf("  | %s\n", m.Context.Text)
		fmt.Printf("  | %s%s\n", strings.Repeat(" ", m.Context.Offset),
			strings.Repeat("^", max(m.Context.Length, 1)))
		if len(m.Replacements) > 0 {
			values := make([]string, len(m.Replacements))
			for i, r := range m.Replacements {
				values[i] = r.Value
			}
			fmt.Printf("  suggestions: %s\n", strings.Join(values, ", "))
		}
	}
}

// LanguagesCmd lists the server's supported languages.
type LanguagesCmd struct{}

func (cmd *LanguagesCmd) Run(app *appContext) error {
	langs, err := app.client.Languages(context.Background())
	if err != nil {
		return err
	}
	return printJSON(langs)
}

// PingCmd reports the server round-trip time.
type PingCmd struct{}

func (cmd *PingCmd) Run(app *appContext) error {
	elapsed, err := app.client.Ping(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("PONG! Delay: %d ms\n", elapsed.Milliseconds())
	return nil
}

// WordsGroup contains the personal dictionary subcommands.
type WordsGroup struct {
	List   WordsListCmd   `cmd:"" default:"withargs" help:"List words from personal dictionaries"`
	Add    WordsAddCmd    `cmd:"" help:"Add a word to a personal dictionary"`
	Delete WordsDeleteCmd `cmd:"" help:"Remove a word from a personal dictionary"`
}

type loginFlags struct {
	Username string `short:"u" required:"" env:"LANGUAGETOOL_USERNAME" help:"Account username."`
	APIKey   string `short:"k" required:"" env:"LANGUAGETOOL_API_KEY" help:"Account API key."`
}

func (f loginFlags) login() ltcheck.LoginArgs {
	return ltcheck.LoginArgs{Username: f.Username, APIKey: f.APIKey}
}

// WordsListCmd lists personal dictionary words.
type WordsListCmd struct {
	loginFlags
	Offset int      `help:"Offset into the word list."`
	Limit  int      `default:"10" help:"Maximum number of words returned."`
	Dicts  []string `help:"Dictionaries to include words from."`
}

func (cmd *WordsListCmd) Run(app *appContext) error {
	resp, err := app.client.Words(context.Background(), ltcheck.WordsRequest{
		Login:  cmd.login(),
		Offset: cmd.Offset,
		Limit:  cmd.Limit,
		Dicts:  cmd.Dicts,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// WordsAddCmd adds a word.
type WordsAddCmd struct {
	loginFlags
	Dict string `help:"Target dictionary; created if missing."`
	Word string `arg:"" help:"Word to add (no whitespace)."`
}

func (cmd *WordsAddCmd) Run(app *appContext) error {
	resp, err := app.client.WordsAdd(context.Background(), ltcheck.WordsAddRequest{
		Word:  cmd.Word,
		Login: cmd.login(),
		Dict:  cmd.Dict,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// WordsDeleteCmd removes a word.
type WordsDeleteCmd struct {
	loginFlags
	Dict string `help:"Dictionary to remove the word from."`
	Word string `arg:"" help:"Word to delete."`
}

func (cmd *WordsDeleteCmd) Run(app *appContext) error {
	resp, err := app.client.WordsDelete(context.Background(), ltcheck.WordsDeleteRequest{
		Word:  cmd.Word,
		Login: cmd.login(),
		Dict:  cmd.Dict,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (cmd *VersionCmd) Run(*appContext) error {
	fmt.Println("ltcheck", version)
	return nil
}

func printJSON(v any) error {
	out, err := util.MarshalNoEscape(v, true)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func readStdin() (string, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "Reading from STDIN, press [CTRL+D] when you're done.")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ltcheck"),
		kong.Description("LanguageTool API client and CLI."),
		kong.UsageOnError(),
		kong.Vars{"default_hostname": ltcheck.DefaultHostname},
	)

	level, _ := zerolog.ParseLevel(CLI.LogLevel)
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	if err := ltcheck.ParsePort(CLI.Port); err != nil {
		ctx.FatalIfErrorf(err)
	}

	client := ltcheck.NewServerClient(CLI.Hostname, CLI.Port).WithLogger(log)
	ctx.FatalIfErrorf(ctx.Run(&appContext{client: client}))
}
