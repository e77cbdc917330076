package parser

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"git.lost.host/meutraa/stepway/internal/game"
)

type DefaultParser struct{}

type bpmSegment struct {
	startBeat float64
	value     float64
}

func (p *DefaultParser) Parse(file string) (*Chartfile, error) {
	data, err := ioutil.ReadFile(file)
	if nil != err {
		return nil, err
	}

	str := strings.ReplaceAll(string(data), "\r", "")
	sections := strings.Split(str, "#NOTES:")

	meta, segments, err := p.parseMeta(sections[0])
	if nil != err {
		return nil, err
	}

	cf := &Chartfile{Meta: meta}
	for _, section := range sections[1:] {
		block, err := p.parseBlock(section, meta, segments)
		if nil != err {
			return nil, err
		}
		cf.Blocks = append(cf.Blocks, block)
	}
	if len(cf.Blocks) == 0 {
		return nil, fmt.Errorf("no #NOTES blocks in %v", file)
	}
	return cf, nil
}

func (p *DefaultParser) parseMeta(header string) (Meta, []bpmSegment, error) {
	meta := Meta{Title: "Untitled", Source: SourceCurated}
	segments := []bpmSegment{}

	for _, mdl := range strings.Split(header, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		mdl = strings.TrimSuffix(mdl, ";")
		idx := strings.Index(mdl, ":")
		if idx < 0 {
			continue
		}
		tag := strings.TrimSpace(mdl[:idx])
		value := strings.TrimSpace(mdl[idx+1:])

		switch tag {
		case "TITLE":
			if value != "" {
				meta.Title = value
			}
		case "OFFSET":
			offs, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return meta, nil, fmt.Errorf("invalid #OFFSET %q: %w", value, err)
			}
			meta.Offset = offs
		case "BPMS":
			value = strings.ReplaceAll(value, "\n", "")
			for _, bpm := range strings.Split(value, ",") {
				bpm = strings.TrimSpace(bpm)
				if bpm == "" {
					continue
				}
				as := strings.SplitN(bpm, "=", 2)
				if len(as) != 2 {
					return meta, nil, fmt.Errorf("invalid #BPMS segment %q", bpm)
				}
				sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
				if nil != err {
					return meta, nil, err
				}
				val, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return meta, nil, err
				}
				if val <= 0 {
					return meta, nil, fmt.Errorf("invalid BPM value %v", val)
				}
				segments = append(segments, bpmSegment{startBeat: sb, value: val})
			}
		case "STEPWAY_VIDEO_ID":
			meta.VideoID = value
		case "STEPWAY_GENERATOR_VERSION":
			version, err := strconv.Atoi(value)
			if nil != err {
				return meta, nil, fmt.Errorf("invalid generator version %q: %w", value, err)
			}
			meta.Version = version
			meta.Source = SourceGenerated
		case "STEPWAY_SEED":
			seed, err := strconv.ParseUint(value, 10, 64)
			if nil != err {
				return meta, nil, fmt.Errorf("invalid seed %q: %w", value, err)
			}
			meta.Seed = seed
		case "STEPWAY_BPM_USED":
			meta.BPMUsed, _ = strconv.ParseFloat(value, 64)
		case "STEPWAY_AV_OFFSET":
			meta.AVOffset, _ = strconv.ParseFloat(value, 64)
		case "STEPWAY_DURATION_HINT":
			meta.Duration, _ = strconv.ParseFloat(value, 64)
		}
	}

	if len(segments) == 0 {
		segments = append(segments, bpmSegment{startBeat: 0, value: 120})
	}
	meta.BPM = segments[0].value
	if meta.BPMUsed == 0 {
		meta.BPMUsed = meta.BPM
	}
	return meta, segments, nil
}

func (p *DefaultParser) parseBlock(section string, meta Meta, segments []bpmSegment) (Block, error) {
	fields := strings.SplitN(section, ":", 6)
	if len(fields) != 6 {
		return Block{}, fmt.Errorf("invalid #NOTES block: expected 6 fields, got %v", len(fields))
	}

	stepType := strings.TrimSpace(fields[0])
	if stepType != "dance-single" {
		return Block{}, fmt.Errorf("unsupported step type %q", stepType)
	}
	difficulty := game.NormalizeDifficulty(fields[2])
	if difficulty == "" {
		return Block{}, fmt.Errorf("missing difficulty in #NOTES block")
	}

	notes, err := p.parseRows(fields[5], meta, segments)
	if nil != err {
		return Block{}, err
	}
	return Block{Difficulty: difficulty, Notes: notes}, nil
}

func (p *DefaultParser) parseRows(body string, meta Meta, segments []bpmSegment) ([]game.Note, error) {
	body = strings.TrimSuffix(strings.TrimSpace(body), ";")

	measures := [][]string{}
	rows := []string{}
	for _, line := range strings.Split(body, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case line == ",":
			measures = append(measures, rows)
			rows = []string{}
		default:
			rows = append(rows, line)
		}
	}
	if len(rows) > 0 {
		measures = append(measures, rows)
	}

	notes := []game.Note{}
	for m, rows := range measures {
		rowCount := len(rows)
		if rowCount == 0 {
			continue
		}
		for r, row := range rows {
			if len(row) != game.LaneCount {
				return nil, fmt.Errorf("invalid row width %v in %q", len(row), row)
			}
			beat := float64(m)*4.0 + float64(r)/float64(rowCount)*4.0
			for lane := 0; lane < game.LaneCount; lane++ {
				switch row[lane] {
				case '0':
				case '1':
					notes = append(notes, game.Note{
						Time: beatToSeconds(beat, segments) - meta.Offset,
						Lane: lane,
						Kind: game.KindTap,
					})
				default:
					return nil, fmt.Errorf("unsupported note symbol %q in row %q", string(row[lane]), row)
				}
			}
		}
	}

	game.SortNotes(notes)
	return notes, nil
}

func beatToSeconds(beat float64, segments []bpmSegment) float64 {
	seconds := 0.0
	for i := 0; i < len(segments); i++ {
		start := segments[i].startBeat
		end := beat
		if i+1 < len(segments) && segments[i+1].startBeat < beat {
			end = segments[i+1].startBeat
		}
		if end <= start {
			break
		}
		seconds += (end - start) * 60.0 / segments[i].value
		if end == beat {
			break
		}
	}
	return seconds
}
