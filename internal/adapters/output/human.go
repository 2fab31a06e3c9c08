package output

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/mikey-austin/nekotv/internal/core"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case core.NodesResult:
		return printNodes(data)
	case core.StatusResult:
		return printStatus(data.State)
	case neko.PlayerState:
		return printStatus(data)
	case core.PlaylistResult:
		return printPlaylist(data)
	case core.AddResult:
		pterm.Success.Printfln("queued %s", itemLabel(data.Item))
		return nil
	case core.ControlResult:
		pterm.Success.Printfln("%s sent to thread %s", data.Type, data.Thread)
		return nil
	default:
		pterm.Success.Println("ok")
		return nil
	}
}

func printNodes(result core.NodesResult) error {
	if len(result.Nodes) == 0 {
		pterm.Info.Printfln("no watch nodes in thread %s", result.Thread)
		return nil
	}
	data := pterm.TableData{{"NODE", "BACKEND", "STATE", "POSITION", "NOW PLAYING"}}
	for _, node := range result.Nodes {
		data = append(data, []string{
			node.NodeID,
			node.Backend,
			stateLabel(node),
			formatPosition(node),
			currentLabel(node),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printStatus(state neko.PlayerState) error {
	label := stateLabel(state)
	pterm.DefaultBasicText.Printfln("%s  [%s]  %s  %s",
		state.NodeID, label, currentLabel(state), formatPosition(state))
	if state.Rate != 0 && state.Rate != 1 {
		pterm.Info.Printfln("rate %sx", strconv.FormatFloat(state.Rate, 'f', -1, 64))
	}
	if len(state.Items) > 0 {
		pterm.Info.Printfln("playlist: %d items (position %d)", len(state.Items), state.ItemPos)
	}
	return nil
}

func printPlaylist(result core.PlaylistResult) error {
	if len(result.Items) == 0 {
		pterm.Info.Printfln("playlist for thread %s is empty", result.Thread)
		return nil
	}
	data := pterm.TableData{{"", "POS", "TITLE", "TYPE", "LEN", "URL"}}
	for i, item := range result.Items {
		marker := ""
		if i == result.ItemPos {
			marker = ">"
		}
		data = append(data, []string{
			marker,
			strconv.Itoa(i),
			itemLabel(item),
			item.Type.String(),
			formatLen(item),
			item.URL,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func stateLabel(state neko.PlayerState) string {
	if state.Current == nil {
		return "idle"
	}
	if state.Paused {
		return "paused"
	}
	return "playing"
}

func currentLabel(state neko.PlayerState) string {
	if state.Current == nil {
		return "(nothing)"
	}
	return itemLabel(*state.Current)
}

func itemLabel(item neko.VideoItem) string {
	if item.Title != "" && item.Author != "" {
		return fmt.Sprintf("%s - %s", item.Author, item.Title)
	}
	if item.Title != "" {
		return item.Title
	}
	return item.URL
}

func formatPosition(state neko.PlayerState) string {
	if state.Current == nil {
		return ""
	}
	if state.Current.Live {
		return "live"
	}
	if state.Current.DurationMS > 0 {
		return fmt.Sprintf("%s / %s", formatMS(state.TimeMS), formatMS(state.Current.DurationMS))
	}
	return formatMS(state.TimeMS)
}

func formatLen(item neko.VideoItem) string {
	if item.Live {
		return "live"
	}
	if item.DurationMS <= 0 {
		return ""
	}
	return formatMS(item.DurationMS)
}

func formatMS(ms int64) string {
	if ms <= 0 {
		return "0:00"
	}
	secs := ms / 1000
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
