// Package main provides a developer CLI that runs local server operations
// against the configured catalog and player store.
//
// Single operation:
//
//	localserver -player p1 -op enter_stage -payload '{"stage_id":"stage_1","party_ids":["hero_1"]}'
//
// Batch mode reads one JSON request per line from stdin, which keeps the
// in-memory store alive across operations:
//
//	{"op":"login"}
//	{"op":"purchase","payload":{"product_id":"potion_pack"}}
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AccelByte/extend-rpg-localserver/pkg/config"
	"github.com/AccelByte/extend-rpg-localserver/pkg/localserver"
)

type batchRequest struct {
	Player  string          `json:"player,omitempty"`
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	var (
		playerID string
		op       string
		payload  string
		batch    bool
		list     bool
	)

	flag.StringVar(&playerID, "player", "local-player", "player id")
	flag.StringVar(&op, "op", "", "operation to run (see -list)")
	flag.StringVar(&payload, "payload", "", "JSON request payload")
	flag.BoolVar(&batch, "batch", false, "read newline-delimited JSON requests from stdin")
	flag.BoolVar(&list, "list", false, "list available operations")
	flag.Parse()

	if list {
		fmt.Println("Available operations:")
		for _, name := range localserver.Operations() {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	if err := run(playerID, op, payload, batch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(playerID, op, payload string, batch bool) error {
	cfg, err := config.LoadRuntime()
	if err != nil {
		return err
	}

	logger, err := localserver.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server, err := localserver.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = server.Close() }()

	if batch {
		return runBatch(ctx, server, playerID, os.Stdin, os.Stdout)
	}

	if op == "" {
		return fmt.Errorf("-op is required (use -list to see operations)")
	}
	out, err := server.Dispatch(ctx, playerID, op, json.RawMessage(payload))
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runBatch(ctx context.Context, server *localserver.Server, defaultPlayer string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var req batchRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return fmt.Errorf("line %d: invalid request: %w", line, err)
		}
		player := req.Player
		if player == "" {
			player = defaultPlayer
		}

		resp, err := server.Dispatch(ctx, player, req.Op, req.Payload)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := fmt.Fprintln(out, string(resp)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
