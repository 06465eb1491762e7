package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/donovanhide/eventsource"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/interfaces/http/dto"
)

// runRemote 在运行中的 narrator-api 上启动旅程并跟随其 SSE 事件流
func runRemote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remote", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "narrator-api base URL")
	token := fs.String("token", os.Getenv("NARRATOR_TOKEN"), "Bearer token when the server requires auth")
	from := fs.String("from", "", "Start location label")
	to := fs.String("to", "", "Destination label")
	mode := fs.String("mode", string(entity.TravelModeDriving), "Travel mode")
	duration := fs.Duration("duration", 3*time.Minute, "Journey duration")
	style := fs.String("style", "", "Story style (NOIR, CHILDREN, HISTORICAL, FANTASY)")
	voice := fs.String("voice", "", "Voice id")
	outDir := fs.String("out", "", "Directory for downloaded segment audio, empty to skip")
	_ = fs.Parse(args)

	body, err := json.Marshal(dto.StartJourneyRequest{
		StartLabel:      *from,
		EndLabel:        *to,
		TravelMode:      *mode,
		DurationSeconds: duration.Seconds(),
		Style:           *style,
		VoiceID:         *voice,
	})
	if err != nil {
		return err
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	base := strings.TrimRight(*server, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/journeys", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		return fmt.Errorf("start journey: %w", err)
	}
	defer stream.Close()

	c := &remoteClient{base: base, token: *token, outDir: *outDir}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-stream.Events:
			if !ok {
				return nil
			}
			done, err := c.handle(ctx, ev)
			if err != nil || done {
				return err
			}
		case err := <-stream.Errors:
			// 重连会以 POST 重新启动旅程，出错即退出
			if errors.Is(err, io.EOF) {
				return errors.New("stream closed before the journey finished")
			}
			return fmt.Errorf("event stream: %w", err)
		}
	}
}

type remoteClient struct {
	base   string
	token  string
	outDir string
}

// handle 打印单个事件，返回是否已到终止事件
func (c *remoteClient) handle(ctx context.Context, ev eventsource.Event) (bool, error) {
	if ev.Event() == "ping" {
		return false, nil
	}
	var se dto.StreamEvent
	if err := json.Unmarshal([]byte(ev.Data()), &se); err != nil {
		return false, fmt.Errorf("decode %s event: %w", ev.Event(), err)
	}

	if se.Segment == nil {
		se.Segment = &dto.SegmentResponse{}
	}
	switch entity.EventType(ev.Event()) {
	case entity.EventOutline:
		fmt.Fprintf(os.Stderr, "journey %s: %d chapters\n", se.JourneyID, se.SegmentCount)
	case entity.EventSegmentText:
		fmt.Printf("\n[%d]\n%s\n", se.Segment.Index, se.Segment.Text)
	case entity.EventSegmentAudio:
		if c.outDir == "" || se.Segment.Audio == nil {
			return false, nil
		}
		path := segmentPath(c.outDir, se.Segment.Index, "wav")
		if err := c.download(ctx, se.Segment.Audio.URL, path); err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stderr, "segment %d audio saved to %s\n", se.Segment.Index, path)
	case entity.EventSegmentAudioFailed:
		fmt.Fprintf(os.Stderr, "segment %d audio failed: %s\n", se.Segment.Index, se.Reason)
	case entity.EventComplete:
		fmt.Fprintf(os.Stderr, "COMPLETE: %d playable segment(s)\n", se.Playable)
		return true, nil
	case entity.EventAborted:
		fmt.Fprintf(os.Stderr, "ABORTED: %s (%d playable)\n", se.Reason, se.Playable)
		return true, nil
	}
	return false, nil
}

func (c *remoteClient) download(ctx context.Context, path, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download audio: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	return os.WriteFile(dst, data, 0o644)
}
