// Package main is a small demonstration binary: it wires a Client from the
// environment, runs one request for the chosen capability, and prints or
// stores the result. Requires the provider API key environment variables
// (e.g. GEMINI_API_KEYS) for the backends you want exercised.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/leofalp/aibridge"
	"github.com/leofalp/aibridge/config"
	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/observability"
	"github.com/leofalp/aibridge/providers/observability/slogobs"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	capability := flag.String("capability", "text_generation", "capability to exercise")
	prompt := flag.String("prompt", "Write a haiku about bridges.", "prompt or text input")
	voice := flag.String("voice", "", "voice name for speech synthesis")
	out := flag.String("out", "", "file to write a binary artifact to")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		slog.Error("loading settings", "error", err)
		os.Exit(1)
	}

	client, err := aibridge.FromSettings(settings)
	if err != nil {
		slog.Error("building client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	ctx := observability.ContextWithObserver(context.Background(), slogobs.New(slog.Default()))

	switch ai.Capability(*capability) {
	case ai.CapabilityTextGeneration:
		response, err := client.GenerateText(ctx, ai.Envelope{Context: *prompt})
		exitOn(err)
		fmt.Println(response.Text)
		if response.FromCache {
			fmt.Fprintln(os.Stderr, "(served from cache)")
		}

	case ai.CapabilityImageGeneration:
		response, err := client.GenerateImage(ctx, *prompt, nil)
		exitOn(err)
		writeArtifact(*out, response.ImageData, response.Format)

	case ai.CapabilityAudioGeneration:
		var params *ai.AudioParams
		if *voice != "" {
			p, err := ai.NewAudioParams(*voice, "", "")
			exitOn(err)
			params = &p
		}
		response, err := client.Speak(ctx, *prompt, params)
		exitOn(err)
		writeArtifact(*out, response.AudioData, response.Format)

	default:
		slog.Error("unsupported capability for this demo", "capability", *capability)
		os.Exit(1)
	}
}

func writeArtifact(path string, data []byte, format string) {
	if path == "" {
		path = "artifact." + format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("writing artifact", "path", path, "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), path)
}

func exitOn(err error) {
	if err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}
}
