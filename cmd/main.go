package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"github.com/google/uuid"

	"github.com/manuelalexan/xlist"
	"github.com/manuelalexan/xlist/persist"
	"github.com/manuelalexan/xlist/utils"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("add"),
	readline.PcItem("push"),
	readline.PcItem("pop"),
	readline.PcItem("deq"),
	readline.PcItem("drop"),

	readline.PcItem("show"),
	readline.PcItem("len"),
	readline.PcItem("sort"),
	readline.PcItem("flip"),
	readline.PcItem("flush"),

	readline.PcItem("save"),
	readline.PcItem("load"),
	readline.PcItem("snaps"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

const help = `add <word>...   append words at the tail
push <word>...  prepend words at the head
pop             remove the head word
deq             remove the head word
drop <word>     delete the first occurrence
show            print the list head to tail
len             print the element count
sort            sort ascending
flip            reverse the order
flush           remove everything
save            snapshot the list to disk
load <uuid>     replace the list with a snapshot
snaps           print stored snapshot ids
exit            leave`

type shell struct {
	list  *xlist.List[string]
	store *persist.Store
	log   utils.Logger
}

func (sh *shell) openStore(dir string) error {
	if sh.store != nil {
		return nil
	}
	store, err := persist.Open(dir, sh.log)
	if err != nil {
		return err
	}
	sh.store = store
	return nil
}

func (sh *shell) run(dir string, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		return help, nil
	case "add":
		for _, w := range args {
			sh.list.Append(w)
		}
		return fmt.Sprintf("%d", sh.list.Len()), nil
	case "push":
		for _, w := range args {
			sh.list.Push(w)
		}
		return fmt.Sprintf("%d", sh.list.Len()), nil
	case "pop", "deq":
		v, ok := sh.list.Pop()
		if !ok {
			return "(empty)", nil
		}
		return v, nil
	case "drop":
		if len(args) != 1 {
			return "", errors.New("drop wants one word")
		}
		n := xlist.DeleteByRef(sh.list, args[0])
		return fmt.Sprintf("%d", n), nil
	case "show":
		var b strings.Builder
		_, _ = sh.list.ForEach(func(w string) error {
			b.WriteString(w)
			b.WriteByte('\n')
			return nil
		})
		return strings.TrimRight(b.String(), "\n"), nil
	case "len":
		return fmt.Sprintf("%d", sh.list.Len()), nil
	case "sort":
		xlist.SortOrdered(sh.list)
		return "ok", nil
	case "flip":
		sh.list.Flip()
		return "ok", nil
	case "flush":
		return fmt.Sprintf("%d", sh.list.Flush()), nil
	case "save":
		if err := sh.openStore(dir); err != nil {
			return "", err
		}
		id, err := persist.Save(sh.store, sh.list, func(w string) []byte { return []byte(w) })
		if err != nil {
			return "", err
		}
		return id.String(), nil
	case "load":
		if len(args) != 1 {
			return "", errors.New("load wants a snapshot id")
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return "", err
		}
		if err := sh.openStore(dir); err != nil {
			return "", err
		}
		loaded, err := persist.Load(sh.store, id, func(b []byte) (string, error) {
			return string(b), nil
		})
		if err != nil {
			return "", err
		}
		sh.list.Flush()
		n := sh.list.AppendList(loaded)
		loaded.Close()
		return fmt.Sprintf("%d", n), nil
	case "snaps":
		if err := sh.openStore(dir); err != nil {
			return "", err
		}
		ids, err := persist.Snapshots(sh.store)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, id := range ids {
			b.WriteString(id.String())
			b.WriteByte('\n')
		}
		return strings.TrimRight(b.String(), "\n"), nil
	case "exit", "quit":
		return "", io.EOF
	}
	return "", fmt.Errorf("unknown command %q, try help", cmd)
}

func main() {
	dir := ".xlist_db"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     ".xlist_cmd_log.txt",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()
	rl.CaptureExitSignal()

	sh := &shell{
		list: xlist.New[string](xlist.WithName[string]("repl")),
		log:  utils.NewDefaultLogger(slog.LevelWarn),
	}
	defer sh.list.Close()
	defer func() {
		if sh.store != nil {
			_ = sh.store.Close()
		}
	}()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt && len(line) != 0 {
			continue
		}
		if err != nil {
			break
		}
		out, err := sh.run(dir, strings.TrimSpace(line))
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}
