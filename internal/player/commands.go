package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a controller command.
type Kind int

const (
	KindToggle Kind = iota + 1
	KindStop
	KindNextRandom
	KindNextSimilar
	KindPrevious
	KindLike
	KindShuffle
	KindSearch
	KindSelect
	KindVolume
	KindVolumeUp
	KindVolumeDown
	KindStatus
	KindHelp
	KindQuit
)

var kindNames = map[Kind]string{
	KindToggle:      "toggle",
	KindStop:        "stop",
	KindNextRandom:  "next",
	KindNextSimilar: "similar",
	KindPrevious:    "previous",
	KindLike:        "like",
	KindShuffle:     "shuffle",
	KindSearch:      "search",
	KindSelect:      "select",
	KindVolume:      "volume",
	KindVolumeUp:    "volume-up",
	KindVolumeDown:  "volume-down",
	KindStatus:      "status",
	KindHelp:        "help",
	KindQuit:        "quit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves an action name such as "similar" or "volume-up".
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, candidate := range kindNames {
		if candidate == name {
			return kind, true
		}
	}
	return 0, false
}

// Command is one request to the controller.
type Command struct {
	Kind Kind
	// Query is the search text for KindSearch.
	Query string
	// Number is the 1-based position for KindSelect: a row of the last search
	// listing when one is active, otherwise a playlist position.
	Number int
	// Volume is the level in [0, 1] for KindVolume.
	Volume float64

	reply chan outcome
}

// VolumeStep is the change applied by "+" and "-".
const VolumeStep = 0.1

// ErrUnknownCommand reports input ParseCommand cannot interpret.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand parses one line of interactive input. Blank lines parse to a
// zero Command with a nil error.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, nil
	}
	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if n, err := strconv.Atoi(head); err == nil && rest == "" {
		if n < 1 {
			return Command{}, fmt.Errorf("selection must be 1 or greater, got %d", n)
		}
		return Command{Kind: KindSelect, Number: n}, nil
	}

	switch strings.ToLower(head) {
	case "p":
		return Command{Kind: KindToggle}, nil
	case "s":
		return Command{Kind: KindStop}, nil
	case "n":
		return Command{Kind: KindNextRandom}, nil
	case "m":
		return Command{Kind: KindNextSimilar}, nil
	case "b":
		return Command{Kind: KindPrevious}, nil
	case "l":
		return Command{Kind: KindLike}, nil
	case "r":
		return Command{Kind: KindShuffle}, nil
	case "i":
		return Command{Kind: KindStatus}, nil
	case "h", "?":
		return Command{Kind: KindHelp}, nil
	case "q":
		return Command{Kind: KindQuit}, nil
	case "+":
		return Command{Kind: KindVolumeUp}, nil
	case "-":
		return Command{Kind: KindVolumeDown}, nil
	case "f":
		if rest == "" {
			return Command{}, errors.New("usage: f <query>")
		}
		return Command{Kind: KindSearch, Query: rest}, nil
	case "v":
		level, err := strconv.ParseFloat(rest, 64)
		if err != nil || level < 0 || level > 100 {
			return Command{}, errors.New("usage: v <0-100>")
		}
		return Command{Kind: KindVolume, Volume: level / 100}, nil
	}
	return Command{}, fmt.Errorf("%w %q (h for help)", ErrUnknownCommand, line)
}

// HelpText lists the interactive commands.
const HelpText = `commands:
  p          play / pause
  s          stop
  n          next random track
  m          next similar track
  b          previous track
  l          like: queue more tracks like this one
  r          reshuffle the playlist
  f <query>  search track names
  <number>   select a search result, or a playlist position
  v <0-100>  set volume
  + / -      volume up / down
  i          status
  h          help
  q          quit`
