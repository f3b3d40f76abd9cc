package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/preference"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #region chat-command

var (
	chatConversation string
	chatText         bool
	chatTimeout      time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run turns read from stdin, one per line",
	Long: `Reads one turn per line from stdin and writes one JSON result per line.

A line is either plain text (the user message, classified by keywords) or a
JSON object:

  {"message": "...", "classification": {...}, "answer": "garment_2",
   "feedback": [{"kind": "color", "value": "navy", "signal": "liked"}]}

"answer" picks an option of the pending clarification. "feedback" is folded
into learned preferences before the message, if any, is handled.`,
	RunE: runChat,
}

func init() {
	f := chatCmd.Flags()
	f.StringVar(&chatConversation, "conversation", "", "conversation id (default: random)")
	f.BoolVar(&chatText, "text", false, "print replies as plain text instead of JSON")
	f.DurationVar(&chatTimeout, "timeout", 10*time.Second, "per-turn timeout")
}

// #endregion chat-command

// #region chat-loop

// chatLine is one JSON input line.
type chatLine struct {
	ConversationID string                  `json:"conversation_id,omitempty"`
	MessageID      string                  `json:"message_id,omitempty"`
	Message        string                  `json:"message"`
	Classification *request.Classification `json:"classification,omitempty"`
	Answer         string                  `json:"answer,omitempty"`
	ImageRef       string                  `json:"image_ref,omitempty"`
	Feedback       []preference.Feedback   `json:"feedback,omitempty"`
}

// feedbackResult is written for a feedback-only line.
type feedbackResult struct {
	ConversationID string              `json:"conversation_id"`
	Preferences    session.Preferences `json:"preferences"`
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	conv := chatConversation
	if conv == "" {
		conv = uuid.New().String()
	}
	return chatLoop(cmd.Context(), a.engine, conv, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop handles lines until EOF. A malformed line or a failed turn is
// reported on w and the loop continues.
func chatLoop(ctx context.Context, e *engine.Engine, conv string, r io.Reader, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if raw == "quit" || raw == "exit" {
			break
		}
		line, err := parseLine(raw)
		if err != nil {
			fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
			continue
		}
		if line.ConversationID == "" {
			line.ConversationID = conv
		}

		turnCtx, cancel := context.WithTimeout(ctx, chatTimeout)
		out, err := handleLine(turnCtx, e, line)
		cancel()
		if err != nil {
			logger.Warn("chat turn failed", zap.String("conversation", line.ConversationID), zap.Error(err))
			fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
			continue
		}
		if res, ok := out.(engine.Result); ok && chatText {
			fmt.Fprintf(w, "%s\n\n", res.Reply)
			continue
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}

func parseLine(raw string) (chatLine, error) {
	if !strings.HasPrefix(raw, "{") {
		return chatLine{Message: raw}, nil
	}
	var line chatLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return chatLine{}, fmt.Errorf("parse line: %w", err)
	}
	if line.Message == "" && line.Answer == "" && len(line.Feedback) == 0 {
		return chatLine{}, errors.New("parse line: need message, answer or feedback")
	}
	return line, nil
}

func handleLine(ctx context.Context, e *engine.Engine, line chatLine) (any, error) {
	var prefs session.Preferences
	if len(line.Feedback) > 0 {
		var err error
		prefs, err = e.RecordFeedback(ctx, line.ConversationID, line.Feedback)
		if err != nil {
			return nil, err
		}
		if line.Message == "" && line.Answer == "" {
			return feedbackResult{ConversationID: line.ConversationID, Preferences: prefs}, nil
		}
	}
	return e.HandleTurn(ctx, engine.Turn{
		ConversationID: line.ConversationID,
		MessageID:      line.MessageID,
		Message:        line.Message,
		Classification: line.Classification,
		Answer:         line.Answer,
		ImageRef:       line.ImageRef,
	})
}

// #endregion chat-loop
