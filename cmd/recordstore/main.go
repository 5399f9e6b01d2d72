// Command recordstore is a small interactive shell over one record
// file, for manually exercising the core (SPEC_FULL.md section 2's
// "Demo CLI"). It sits entirely outside the core's contract: recordcore
// itself reads no configuration and has no CLI (spec.md section 6), so
// everything in this package is additive scaffolding around it.
//
// Grounded on cmd/client/main.go's readline REPL shape (statement-less
// here: each line is one command) and internal/config.go's viper config
// loading.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nvdb/recordcore/internal/buffer"
	"github.com/nvdb/recordcore/internal/diskio"
	"github.com/nvdb/recordcore/internal/recordfile"
)

func main() {
	var configPath = flag.String("config", "", "optional recordstore.yaml config path")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	file, pool, fd, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "recordstore> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     cfg.HistoryPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("recordstore: %s (record_size=%d slots_per_page=%d)\n",
		filepath.Join(cfg.DataDir, cfg.DataFile), file.RecordSize(), file.SlotsPerPage())
	fmt.Println("type \\help for commands")

	runREPL(rl, file, pool, fd)
}

// openStore opens (or creates) the data file and formats it as a fresh
// record file if it was empty.
func openStore(cfg Config) (*recordfile.File, *buffer.Pool, diskio.FileID, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, diskio.InvalidFileID, err
	}
	path := filepath.Join(cfg.DataDir, cfg.DataFile)

	existed := false
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		existed = true
	}

	disk := diskio.NewFileManager()
	fd, err := disk.Open(path, cfg.PageSize)
	if err != nil {
		return nil, nil, diskio.InvalidFileID, err
	}

	pool := buffer.NewPool(disk, cfg.PoolCapacity, cfg.PageSize, nil)

	var file *recordfile.File
	if existed {
		file, err = recordfile.OpenFile(pool, fd, nil)
	} else {
		file, err = recordfile.CreateFile(pool, fd, int32(cfg.RecordSize), int32(cfg.SlotsPerPage), nil)
	}
	if err != nil {
		return nil, nil, diskio.InvalidFileID, err
	}
	return file, pool, fd, nil
}

func runREPL(rl *readline.Instance, file *recordfile.File, pool *buffer.Pool, fd diskio.FileID) {
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "\\q", "quit", "exit":
			return
		case "\\help":
			printHelp()
		case "insert":
			handleInsert(file, args)
		case "get":
			handleGet(file, args)
		case "update":
			handleUpdate(file, args)
		case "delete":
			handleDelete(file, args)
		case "scan":
			handleScan(file)
		case "flush":
			if err := pool.FlushAllPages(fd); err != nil {
				fmt.Printf("flush error: %v\n", err)
			} else {
				fmt.Println("flushed")
			}
		case "stats":
			printStats(pool)
		default:
			fmt.Printf("unknown command: %s (try \\help)\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  insert <text>              insert a record, prints its rid
  get <page> <slot>          print the record at rid
  update <page> <slot> <text> overwrite the record at rid
  delete <page> <slot>       delete the record at rid
  scan                       print every live record in ascending rid order
  flush                      flush all dirty pages to disk
  stats                      print buffer pool occupancy
  quit | exit | \q           quit`)
}

func parseRid(args []string) (recordfile.Rid, []string, error) {
	if len(args) < 2 {
		return recordfile.Rid{}, nil, errors.New("expected <page> <slot>")
	}
	pageNo, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return recordfile.Rid{}, nil, fmt.Errorf("bad page number: %w", err)
	}
	slotNo, err := strconv.Atoi(args[1])
	if err != nil {
		return recordfile.Rid{}, nil, fmt.Errorf("bad slot number: %w", err)
	}
	return recordfile.Rid{PageNo: pageNo, SlotNo: slotNo}, args[2:], nil
}

func padRecord(text string, size int32) []byte {
	buf := make([]byte, size)
	copy(buf, text)
	return buf
}

func printableRecord(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00")
}

func handleInsert(file *recordfile.File, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: insert <text>")
		return
	}
	text := strings.Join(args, " ")
	rid, err := file.InsertRecord(padRecord(text, file.RecordSize()))
	if err != nil {
		fmt.Printf("insert error: %v\n", err)
		return
	}
	fmt.Printf("inserted at %s\n", rid)
}

func handleGet(file *recordfile.File, args []string) {
	rid, _, err := parseRid(args)
	if err != nil {
		fmt.Printf("usage: get <page> <slot>: %v\n", err)
		return
	}
	buf, err := file.GetRecord(rid)
	if err != nil {
		fmt.Printf("get error: %v\n", err)
		return
	}
	fmt.Println(printableRecord(buf))
}

func handleUpdate(file *recordfile.File, args []string) {
	rid, rest, err := parseRid(args)
	if err != nil || len(rest) == 0 {
		fmt.Println("usage: update <page> <slot> <text>")
		return
	}
	text := strings.Join(rest, " ")
	if err := file.UpdateRecord(rid, padRecord(text, file.RecordSize())); err != nil {
		fmt.Printf("update error: %v\n", err)
		return
	}
	fmt.Println("updated")
}

func handleDelete(file *recordfile.File, args []string) {
	rid, _, err := parseRid(args)
	if err != nil {
		fmt.Printf("usage: delete <page> <slot>: %v\n", err)
		return
	}
	if err := file.DeleteRecord(rid); err != nil {
		fmt.Printf("delete error: %v\n", err)
		return
	}
	fmt.Println("deleted")
}

func handleScan(file *recordfile.File) {
	scan, err := recordfile.NewScan(file)
	if err != nil {
		fmt.Printf("scan error: %v\n", err)
		return
	}
	count := 0
	for !scan.IsEnd() {
		rid := scan.Rid()
		buf, err := file.GetRecord(rid)
		if err != nil {
			fmt.Printf("scan error at %s: %v\n", rid, err)
			return
		}
		fmt.Printf("%s\t%s\n", rid, printableRecord(buf))
		count++
		if _, err := scan.Next(); err != nil {
			fmt.Printf("scan error: %v\n", err)
			return
		}
	}
	fmt.Printf("(%d records)\n", count)
}

func printStats(pool *buffer.Pool) {
	s := pool.Stats()
	fmt.Printf("capacity=%d resident=%d pinned=%d dirty=%d free=%d\n",
		s.Capacity, s.ResidentPages, s.PinnedFrames, s.DirtyFrames, s.FreeFrames)
}
