// Command readaloud inspects narrated ePub books from the terminal: dump
// metadata and navigation, print sections with their sync maps, cut sentence
// audio clips, and export flashcards to Anki.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/simp-lee/readaloud"
	"github.com/simp-lee/readaloud/ankiconnect"
	"github.com/simp-lee/readaloud/dictionary"
)

const version = "0.1.0"

// CLI defines the command-line interface for readaloud.
var CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Info     InfoCmd     `cmd:"" help:"Print book metadata and warnings"`
	TOC      TOCCmd      `cmd:"" help:"Print the navigation tree"`
	Sections SectionsCmd `cmd:"" help:"List sections with narration status"`
	Sentence SentenceCmd `cmd:"" help:"Print the sentence narrated at a playback time"`
	Clip     ClipCmd     `cmd:"" help:"Extract one sentence's audio clip to a WAV file"`
	Card     CardCmd     `cmd:"" help:"Export a sentence as an Anki flashcard"`
	Define   DefineCmd   `cmd:"" help:"Look up a word in the dictionary"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// InfoCmd prints book metadata and load warnings.
type InfoCmd struct {
	Path string `arg:"" help:"Path to the ePub file" type:"existingfile"`
}

func (c *InfoCmd) Run() error {
	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	md := b.Metadata()
	fmt.Printf("Title:    %s\n", b.Title())
	fmt.Printf("Author:   %s\n", b.Author())
	fmt.Printf("Version:  %s\n", md.Version)
	if len(md.Language) > 0 {
		fmt.Printf("Language: %s\n", strings.Join(md.Language, ", "))
	}
	for _, id := range md.Identifiers {
		fmt.Printf("ID:       %s", id.Value)
		if id.Scheme != "" {
			fmt.Printf(" (%s)", id.Scheme)
		}
		fmt.Println()
	}
	fmt.Printf("Sections: %d\n", b.SectionCount())

	narrated := 0
	for _, s := range b.Sections() {
		if s.HasNarration() {
			narrated++
		}
	}
	fmt.Printf("Narrated: %d\n", narrated)

	if cover, err := b.Cover(); err == nil {
		fmt.Printf("Cover:    %s (%dx%d)\n", cover.Path, cover.Width, cover.Height)
	}

	for _, w := range b.Warnings() {
		slog.Warn(w)
	}
	return nil
}

// TOCCmd prints the navigation tree.
type TOCCmd struct {
	Path string `arg:"" help:"Path to the ePub file" type:"existingfile"`
}

func (c *TOCCmd) Run() error {
	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	printNav(b.TOC(), 0)
	return nil
}

func printNav(items []readaloud.NavItem, depth int) {
	for _, item := range items {
		marker := ""
		if !item.Navigable {
			marker = " [dangling]"
		}
		fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth), item.Title, marker)
		printNav(item.Children, depth+1)
	}
}

// SectionsCmd lists sections with their narration status.
type SectionsCmd struct {
	Path string `arg:"" help:"Path to the ePub file" type:"existingfile"`
}

func (c *SectionsCmd) Run() error {
	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	for _, s := range b.Sections() {
		status := "-"
		if s.HasNarration() {
			last := s.Sync.Points[len(s.Sync.Points)-1]
			status = fmt.Sprintf("%d clips, %s", len(s.Sync.Points), readaloud.FormatClock(last.End))
		}
		fmt.Printf("%3d  %-40s %s\n", s.Index, s.Title, status)
	}
	return nil
}

// SentenceCmd prints the sentence narrated at a playback time.
type SentenceCmd struct {
	Path    string  `arg:"" help:"Path to the ePub file" type:"existingfile"`
	Section int     `required:"" help:"Section index"`
	Time    float64 `required:"" short:"t" help:"Playback time in seconds"`
}

func (c *SentenceCmd) Run() error {
	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	s, err := b.Section(c.Section)
	if err != nil {
		return err
	}
	text, p, ok := s.SentenceAt(c.Time)
	if !ok {
		return fmt.Errorf("section %d has no narration", c.Section)
	}
	fmt.Printf("[%s - %s] #%s\n", readaloud.FormatClock(p.Start), readaloud.FormatClock(p.End), p.AnchorID)
	fmt.Println(text)
	return nil
}

// ClipCmd extracts one sentence's audio clip to a WAV file.
type ClipCmd struct {
	Path    string `arg:"" help:"Path to the ePub file" type:"existingfile"`
	Section int    `required:"" help:"Section index"`
	Anchor  string `required:"" help:"Anchor id of the sentence"`
	Out     string `required:"" short:"o" help:"Output WAV path" type:"path"`
}

func (c *ClipCmd) Run() error {
	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	wav, _, err := extractSentenceClip(b, c.Section, c.Anchor)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, wav, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	slog.Info("clip written", "path", c.Out, "bytes", len(wav))
	return nil
}

// CardCmd exports a sentence as an Anki flashcard with its audio clip.
type CardCmd struct {
	Path     string `arg:"" help:"Path to the ePub file" type:"existingfile"`
	Section  int    `required:"" help:"Section index"`
	Anchor   string `required:"" help:"Anchor id of the sentence"`
	Settings string `help:"Anki settings JSON path" type:"path"`
}

func (c *CardCmd) Run() error {
	settingsPath := c.Settings
	if settingsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		settingsPath = filepath.Join(home, ".config", "readaloud", "anki.json")
	}
	settings, err := ankiconnect.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if settings.Deck == "" || settings.Model == "" || settings.SentenceField == "" {
		return fmt.Errorf("anki settings incomplete: deck, model, and sentenceField are required (%s)", settingsPath)
	}

	b, err := readaloud.Open(c.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	s, err := b.Section(c.Section)
	if err != nil {
		return err
	}
	sentence := s.Sentence(c.Anchor)
	if sentence == "" {
		return fmt.Errorf("anchor %q has no text in section %d", c.Anchor, c.Section)
	}

	ctx := context.Background()
	client := &ankiconnect.Client{URL: settings.URL}
	if _, err := client.Version(ctx); err != nil {
		return fmt.Errorf("anki is not reachable: %w", err)
	}

	fields := map[string]string{settings.SentenceField: sentence}

	if settings.AudioField != "" {
		wav, _, err := extractSentenceClip(b, c.Section, c.Anchor)
		if err != nil {
			slog.Warn("no audio clip for card", "anchor", c.Anchor, "err", err)
		} else {
			name := ankiconnect.ClipFileName(wav)
			if err := client.StoreMediaFile(ctx, name, wav); err != nil {
				return err
			}
			fields[settings.AudioField] = ankiconnect.SoundTag(name)
		}
	}

	if settings.SourceField != "" {
		source := b.Title()
		if author := b.Author(); author != "" {
			source += " - " + author
		}
		fields[settings.SourceField] = source
	}

	id, err := client.AddNote(ctx, ankiconnect.Note{
		DeckName:  settings.Deck,
		ModelName: settings.Model,
		Fields:    fields,
		Tags:      settings.Tags,
	})
	if err != nil {
		return err
	}
	slog.Info("card added", "note", id, "deck", settings.Deck)
	return nil
}

// extractSentenceClip decodes the section's narration audio and cuts the
// anchor's clip window out of it, returning encoded WAV bytes.
func extractSentenceClip(b *readaloud.Book, section int, anchor string) ([]byte, readaloud.SyncPoint, error) {
	s, err := b.Section(section)
	if err != nil {
		return nil, readaloud.SyncPoint{}, err
	}
	p, ok := s.Sync.PointForAnchor(anchor)
	if !ok {
		return nil, readaloud.SyncPoint{}, fmt.Errorf("anchor %q has no sync point in section %d", anchor, section)
	}

	data, err := b.ReadFile(p.AudioPath)
	if err != nil {
		return nil, readaloud.SyncPoint{}, err
	}
	src, err := readaloud.DecodeWAV(data)
	if err != nil {
		return nil, readaloud.SyncPoint{}, fmt.Errorf("decode %s: %w", p.AudioPath, err)
	}

	clip := readaloud.ExtractClip(src, p.Start, p.End)
	wav, err := readaloud.EncodeWAV(clip)
	if err != nil {
		return nil, readaloud.SyncPoint{}, err
	}
	return wav, p, nil
}

// DefineCmd looks up a word in the dictionary.
type DefineCmd struct {
	Word string `arg:"" help:"Word to define"`
	Lang string `default:"en" help:"Dictionary language code"`
	Full bool   `help:"Print all meanings instead of the first definition"`
}

func (c *DefineCmd) Run() error {
	client := &dictionary.Client{Language: c.Lang}
	entries, err := client.Lookup(context.Background(), c.Word)
	if err != nil {
		return err
	}

	if !c.Full {
		fmt.Println(dictionary.ShortDefinition(entries))
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s %s\n", e.Word, e.Phonetic)
		for _, m := range e.Meanings {
			fmt.Printf("  (%s)\n", m.PartOfSpeech)
			for _, d := range m.Definitions {
				fmt.Printf("    - %s\n", d.Definition)
				if d.Example != "" {
					fmt.Printf("      e.g. %s\n", d.Example)
				}
			}
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("readaloud %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("readaloud"),
		kong.Description("Narrated ePub inspector and flashcard exporter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
