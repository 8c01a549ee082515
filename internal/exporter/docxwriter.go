package exporter

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
)

const (
	fontName = "Times New Roman"
	fontSize = 13

	sentencesPerParagraph = 5
)

var reSentenceEnd = regexp.MustCompile(`[.!?。！？]\s+`)

// transcriptToDocx writes a as a document: the video name as title, a short
// metadata block, then the transcript in paragraphs.
func transcriptToDocx(a artifact.Artifact, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), a.VideoFilename, true, 16)

	addField(doc.AddParagraph(""), "Recorded", a.VideoRecordingTime)
	addField(doc.AddParagraph(""), "Transcribed", a.TranscriptionTime)
	addField(doc.AddParagraph(""), "Model", a.WhisperModel)
	if lang := transcriber.DetectLanguage(a.Transcription); lang != "" {
		addField(doc.AddParagraph(""), "Language", lang)
	}
	doc.AddParagraph("")

	for _, para := range paragraphs(a.Transcription) {
		addStyledRun(doc.AddParagraph(""), para, false, fontSize)
	}

	return doc.SaveTo(outputPath)
}

// paragraphs keeps existing line breaks and splits long lines into groups
// of sentences.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var sentences []string
		last := 0
		for _, loc := range reSentenceEnd.FindAllStringIndex(line, -1) {
			sentences = append(sentences, strings.TrimSpace(line[last:loc[1]]))
			last = loc[1]
		}
		if rest := strings.TrimSpace(line[last:]); rest != "" {
			sentences = append(sentences, rest)
		}

		for i := 0; i < len(sentences); i += sentencesPerParagraph {
			end := min(i+sentencesPerParagraph, len(sentences))
			out = append(out, strings.Join(sentences[i:end], " "))
		}
	}
	return out
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addField(p *docx.Paragraph, label, value string) {
	p.AddText(label+": ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
	p.AddText(value).Font(fontName).Size(fontSize).Color("000000")
}
