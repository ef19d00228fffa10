package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
)

// pinningDelay is how long the "Uploading to IPFS..." label shows before switching to "Pinning...".
// The server runs both tiers in one request, so the label is advanced on a timer.
const pinningDelay = 1500 * time.Millisecond

// Stage is where an upload is in its lifecycle.
type Stage int

const (
	StageUploading Stage = iota
	StagePinning
	StageSucceeded
	StageFailed
	StageCancelled
)

// UploadFunc performs the upload. It runs in a tea.Cmd goroutine.
type UploadFunc func() (*storage.UploadResponse, error)

type uploadDoneMsg struct{ resp *storage.UploadResponse }

type uploadErrMsg struct{ err error }

type pinningStageMsg struct{}

// UploadModel is the bubbletea model for `pinner upload`.
type UploadModel struct {
	spinner  spinner.Model
	stage    Stage
	filename string
	upload   UploadFunc
	result   *storage.UploadResponse
	err      error
}

// NewUploadModel creates a model that runs upload once started.
func NewUploadModel(filename string, upload UploadFunc) UploadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return UploadModel{
		spinner:  s,
		stage:    StageUploading,
		filename: filename,
		upload:   upload,
	}
}

// Init starts the spinner, the upload and the stage timer
func (m UploadModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.runUpload(),
		tea.Tick(pinningDelay, func(time.Time) tea.Msg { return pinningStageMsg{} }),
	)
}

func (m UploadModel) runUpload() tea.Cmd {
	upload := m.upload
	return func() tea.Msg {
		resp, err := upload()
		if err != nil {
			return uploadErrMsg{err: err}
		}
		return uploadDoneMsg{resp: resp}
	}
}

// Update handles messages
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.inProgress() {
				m.stage = StageCancelled
			}
			return m, tea.Quit
		}

	case pinningStageMsg:
		if m.stage == StageUploading {
			m.stage = StagePinning
		}
		return m, nil

	case uploadDoneMsg:
		m.stage = StageSucceeded
		m.result = msg.resp
		return m, tea.Quit

	case uploadErrMsg:
		m.stage = StageFailed
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.inProgress() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m UploadModel) inProgress() bool {
	return m.stage == StageUploading || m.stage == StagePinning
}

// View renders the UI
func (m UploadModel) View() string {
	var s strings.Builder

	switch m.stage {
	case StageUploading:
		fmt.Fprintf(&s, "%s Uploading to IPFS... %s\n", m.spinner.View(), subtleStyle.Render(m.filename))
	case StagePinning:
		fmt.Fprintf(&s, "%s Pinning... %s\n", m.spinner.View(), subtleStyle.Render(m.filename))
	case StageSucceeded:
		s.WriteString(renderUploadResult(m.result))
	case StageFailed:
		s.WriteString(errorStyle.Render("Upload failed: "+m.err.Error()) + "\n")
	case StageCancelled:
		s.WriteString(subtleStyle.Render("Upload cancelled") + "\n")
	}

	return s.String()
}

// Stage returns the current stage.
func (m UploadModel) Stage() Stage { return m.stage }

// Result returns the server response after a successful upload.
func (m UploadModel) Result() *storage.UploadResponse { return m.result }

// Err returns the failure after a failed upload.
func (m UploadModel) Err() error { return m.err }

func renderUploadResult(resp *storage.UploadResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(successStyle.Render("✓ Uploaded "+resp.Filename) + "\n")
	fmt.Fprintf(&b, "CID: %s\n", cidStyle.Render(resp.CID))
	if resp.IPFSCID != "" && resp.IPFSCID != resp.CID {
		fmt.Fprintf(&b, "IPFS CID: %s\n", cidStyle.Render(resp.IPFSCID))
	}
	if resp.NFTStorage {
		b.WriteString("Replicated to NFT.Storage\n")
	} else {
		b.WriteString(subtleStyle.Render("Stored on IPFS only") + "\n")
	}

	var gw strings.Builder
	gw.WriteString(titleStyle.Render("Gateways"))
	for _, u := range resp.Gateways {
		gw.WriteString("\n" + u)
	}
	b.WriteString(boxStyle.Render(gw.String()) + "\n")
	return b.String()
}
