package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leandrodaf/midibridge/sdk/surface"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

var transportControls = []surface.Control{
	surface.TrackLeft, surface.TrackRight, surface.Cycle,
	surface.MarkerSet, surface.MarkerLeft, surface.MarkerRight,
	surface.FastLeft, surface.FastRight,
	surface.Stop, surface.Play, surface.Record,
}

// renderState prints the transport buttons and one row per channel strip.
func renderState(state surface.State, colorize bool) string {
	button := func(c surface.Control) string {
		if !state.Pressed(c) {
			return "off"
		}
		if colorize {
			return text.Colors{text.FgGreen, text.Bold}.Sprint("on")
		}
		return "on"
	}

	transport := make([][]string, 0, len(transportControls))
	for _, c := range transportControls {
		transport = append(transport, []string{c.String(), button(c)})
	}

	channels := make([][]string, 0, surface.Channels)
	for ch := 0; ch < surface.Channels; ch++ {
		channels = append(channels, []string{
			strconv.Itoa(ch),
			strconv.Itoa(int(state.Value(surface.Fader(ch)))),
			strconv.Itoa(int(state.Value(surface.Knob(ch)))),
			button(surface.Solo(ch)),
			button(surface.Mute(ch)),
			button(surface.RecArm(ch)),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Button", "State"}, transport, nil))
	b.WriteString("\n")
	b.WriteString(renderTable(
		[]string{"Channel", "Fader", "Knob", "Solo", "Mute", "Rec"},
		channels,
		[]columnAlignment{alignRight, alignRight, alignRight},
	))
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
