// Package main 旅程叙述命令行工具
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/infrastructure/messaging"
	"journey-narrator/internal/infrastructure/persistence/redis"
	einoobs "journey-narrator/internal/observability/eino"
	"journey-narrator/internal/wire"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/utils"
)

var version = "dev"

const usage = "usage: narrator-cli <narrate|remote|tail|token|version> [flags]"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "narrate":
		err = runNarrate(ctx, os.Args[2:])
	case "remote":
		err = runRemote(ctx, os.Args[2:])
	case "tail":
		err = runTail(ctx, os.Args[2:])
	case "token":
		err = runToken(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// 标准输出留给叙述文本
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format, "stderr")
	return cfg, nil
}

func runNarrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("narrate", flag.ExitOnError)
	from := fs.String("from", "", "Start location label")
	to := fs.String("to", "", "Destination label")
	mode := fs.String("mode", string(entity.TravelModeDriving), "Travel mode")
	duration := fs.Duration("duration", 3*time.Minute, "Journey duration")
	distance := fs.Float64("distance", 0, "Journey distance in meters")
	style := fs.String("style", "", "Story style (NOIR, CHILDREN, HISTORICAL, FANTASY)")
	voice := fs.String("voice", "", "Voice id, defaults to audio.default_voice")
	outDir := fs.String("out", "narration", "Directory for segment text and audio")
	_ = fs.Parse(args)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *voice == "" {
		*voice = cfg.Audio.DefaultVoice
	}

	journey, err := entity.NewJourney(*from, *to, entity.TravelMode(strings.ToLower(*mode)), duration.Seconds(), *distance, entity.ParseStoryStyle(*style), *voice)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	einoobs.Init()
	narrator, cleanup, err := wire.InitializeNarrator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize narrator: %w", err)
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "journey %s: %s\n", journey.ID, journey.Describe())
	story, events := narrator.Orchestrator.Run(ctx, journey)

	var last entity.SegmentEvent
	for ev := range events {
		last = ev
		if err := writeEvent(*outDir, ev); err != nil {
			return err
		}
	}

	snap := story.Snapshot()
	fmt.Fprintf(os.Stderr, "%s: %d playable segment(s) written to %s\n", snap.State, last.Playable, *outDir)
	if last.Type == entity.EventAborted && last.Playable == 0 {
		return fmt.Errorf("narration aborted: %s", last.Reason)
	}
	return nil
}

// writeEvent 打印文本并落盘片段
func writeEvent(dir string, ev entity.SegmentEvent) error {
	switch ev.Type {
	case entity.EventOutline:
		fmt.Fprintf(os.Stderr, "outline (%d chapters):\n", len(ev.Outline))
		for i, ch := range ev.Outline {
			fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, ch)
		}
		return os.WriteFile(filepath.Join(dir, "outline.txt"), []byte(strings.Join(ev.Outline, "\n")+"\n"), 0o644)
	case entity.EventSegmentText:
		seg := ev.Segment
		fmt.Printf("\n[%d]\n%s\n", seg.Index, seg.Text)
		return os.WriteFile(segmentPath(dir, seg.Index, "txt"), []byte(seg.Text+"\n"), 0o644)
	case entity.EventSegmentAudio:
		seg := ev.Segment
		if seg.Audio == nil {
			return nil
		}
		fmt.Fprintf(os.Stderr, "segment %d audio: %s (%d bytes)\n", seg.Index, seg.Audio.Duration.Round(time.Millisecond), seg.Audio.Size())
		return os.WriteFile(segmentPath(dir, seg.Index, "wav"), seg.Audio.Data, 0o644)
	case entity.EventSegmentAudioFailed:
		fmt.Fprintf(os.Stderr, "segment %d audio failed: %s\n", ev.Segment.Index, ev.Reason)
	case entity.EventAborted:
		fmt.Fprintf(os.Stderr, "aborted: %s\n", ev.Reason)
	}
	return nil
}

func segmentPath(dir string, index int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("segment-%02d.%s", index, ext))
}

func runTail(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	journeyID := fs.String("journey", "", "Only follow events of this journey and exit after its terminal event")
	block := fs.Duration("block", 5*time.Second, "XREAD block timeout")
	_ = fs.Parse(args)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := redis.NewClient(ctx, cfg.Cache.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	stream := messaging.StreamJourneySegments
	if cfg.Messaging.RedisStream.Stream != "" {
		stream = messaging.Stream(cfg.Messaging.RedisStream.Stream)
	}
	tail := messaging.NewTail(client.Redis(), messaging.TailConfig{
		Stream:       stream,
		BlockTimeout: *block,
		JourneyID:    *journeyID,
	})

	err = tail.Follow(ctx, func(_ context.Context, ev entity.SegmentEvent) error {
		switch {
		case ev.Segment != nil:
			fmt.Printf("%s %s #%d %s\n", ev.JourneyID, ev.Type, ev.Segment.Index, ev.Reason)
		default:
			fmt.Printf("%s %s %s\n", ev.JourneyID, ev.Type, ev.Reason)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "", "Caller identity, e.g. a vehicle or frontend instance id")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = fs.Parse(args)

	if *subject == "" {
		return errors.New("-subject is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	token, err := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer).GenerateToken(*subject, "narrate", *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
