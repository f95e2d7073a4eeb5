package main

// Runs the comment classification prompt against the configured provider
// without the rest of the stack, for prompt iteration:
//   go run ./cmd/prompttest -video dQw4w9WgXcQ comments.txt
// The input file carries one comment per line; "-" reads stdin.

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sentiment-scoop/internal/llm"
	"sentiment-scoop/internal/llm/gemini"
	openai "sentiment-scoop/internal/llm/openai"
	"sentiment-scoop/internal/shared/config"
)

func main() {
	videoID := flag.String("video", "prompttest", "video id to label the request with")
	showPrompt := flag.Bool("print-prompt", false, "print the rendered prompt instead of calling the provider")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: prompttest [-video id] [-print-prompt] <comments-file|->")
		os.Exit(2)
	}

	comments, err := readComments(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read comments: %v\n", err)
		os.Exit(1)
	}
	if len(comments) == 0 {
		fmt.Fprintln(os.Stderr, "no comments in input")
		os.Exit(1)
	}

	input := llm.ClassifyInput{VideoID: *videoID, Comments: comments}

	if *showPrompt {
		fmt.Println(llm.BuildClassifyPrompt(input.Comments))
		return
	}

	cfg := config.Load()
	client, err := buildClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}

	classification, err := client.Classify(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "classify: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(classification, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "classified=%d of %d\n", classification.Classified(), len(comments))
}

func buildClient(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	}
}

func readComments(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var comments []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			comments = append(comments, line)
		}
	}
	return comments, scanner.Err()
}
