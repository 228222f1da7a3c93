package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-reviser/internal/analysis"
	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/config"
	"github.com/fmuoria/resume-reviser/internal/export"
	"github.com/fmuoria/resume-reviser/internal/ingestion"
	"github.com/fmuoria/resume-reviser/internal/llm"
	"github.com/fmuoria/resume-reviser/internal/models"
	"github.com/fmuoria/resume-reviser/internal/render"
	"github.com/fmuoria/resume-reviser/internal/session"
)

// App represents the main GUI application
type App struct {
	fyneApp     fyne.App
	mainWindow  fyne.Window
	config      *config.Store
	session     *session.Session
	fileHandler *ingestion.FileHandler

	// UI Components
	fileLabel       *widget.Label
	selectFileBtn   *widget.Button
	removeFileBtn   *widget.Button
	jobDescText     *widget.Entry
	jobURLEntry     *widget.Entry
	fetchBtn        *widget.Button
	submitBtn       *widget.Button
	resetBtn        *widget.Button
	progressBar     *widget.ProgressBarInfinite
	statusLabel     *widget.Label
	originalScore   *widget.ProgressBar
	originalBand    *widget.Label
	revisedScore    *widget.ProgressBar
	revisedBand     *widget.Label
	improvement     *widget.Label
	feedbackList    *widget.List
	resumePreview   *widget.Label
	copyBtn         *widget.Button
	downloadPDFBtn  *widget.Button
	downloadDOCXBtn *widget.Button
	exportBtn       *widget.Button

	feedback []string
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config) (*App, error) {
	a := app.NewWithID("com.fmuoria.resumereviser")
	w := a.NewWindow("ATS Resume Reviser")
	w.Resize(fyne.NewSize(1000, 760))

	guiApp := &App{
		fyneApp:     a,
		mainWindow:  w,
		config:      config.NewStore(cfg),
		fileHandler: ingestion.NewFileHandler(cfg.MaxUploadBytes),
	}

	// The client is built per analysis so saved settings apply immediately
	analyzer, err := analysis.NewAnalyzer(func(ctx context.Context) (llm.Client, error) {
		return llm.NewClient(ctx, guiApp.config.Get())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	guiApp.session = session.New(ingestion.NewParser(), analyzer)
	guiApp.session.SetChangeCallback(func(snap session.Snapshot) {
		fyne.Do(func() {
			guiApp.refresh(snap)
		})
	})

	guiApp.setupUI()
	guiApp.refresh(guiApp.session.Snapshot())

	return guiApp, nil
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Revise Resume", a.createReviseTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createReviseTab creates the input and result tab
func (a *App) createReviseTab() fyne.CanvasObject {
	// Resume file section
	a.fileLabel = widget.NewLabel("No file selected")
	a.selectFileBtn = widget.NewButton("Select Resume...", a.handleSelectFile)
	a.removeFileBtn = widget.NewButton("Remove", a.handleRemoveFile)

	fileSection := container.NewVBox(
		widget.NewLabel("Resume (.pdf or .docx)"),
		container.NewHBox(a.selectFileBtn, a.removeFileBtn, a.fileLabel),
	)

	// Job description section
	a.jobDescText = widget.NewMultiLineEntry()
	a.jobDescText.SetPlaceHolder("Paste the job description here...")
	a.jobDescText.SetMinRowsVisible(8)
	a.jobDescText.Wrapping = fyne.TextWrapWord
	a.jobDescText.OnChanged = a.handleJobDescriptionChanged

	a.jobURLEntry = widget.NewEntry()
	a.jobURLEntry.SetPlaceHolder("or fetch it from a job posting URL")
	a.fetchBtn = widget.NewButton("Fetch", a.handleFetchPosting)

	jobSection := container.NewVBox(
		widget.NewLabel("Job Description"),
		a.jobDescText,
		container.NewBorder(nil, nil, nil, a.fetchBtn, a.jobURLEntry),
	)

	// Progress section
	a.progressBar = widget.NewProgressBarInfinite()
	a.progressBar.Hide()
	a.statusLabel = widget.NewLabel("Ready")
	a.submitBtn = widget.NewButton("Analyze & Revise", a.handleSubmit)
	a.submitBtn.Importance = widget.HighImportance
	a.resetBtn = widget.NewButton("Start Over", a.handleReset)

	progressSection := container.NewVBox(
		a.statusLabel,
		a.progressBar,
		container.NewHBox(a.submitBtn, a.resetBtn),
	)

	return container.NewHSplit(
		container.NewVScroll(container.NewVBox(
			fileSection,
			widget.NewSeparator(),
			jobSection,
			widget.NewSeparator(),
			progressSection,
		)),
		a.createResultsPanel(),
	)
}

// createResultsPanel shows scores, feedback and the revised resume
func (a *App) createResultsPanel() fyne.CanvasObject {
	a.originalScore = widget.NewProgressBar()
	a.originalScore.Max = 100
	a.originalBand = widget.NewLabel("")
	a.revisedScore = widget.NewProgressBar()
	a.revisedScore.Max = 100
	a.revisedBand = widget.NewLabel("")
	a.improvement = widget.NewLabel("")

	scores := widget.NewForm(
		widget.NewFormItem("Original ATS Score", container.NewBorder(nil, nil, nil, a.originalBand, a.originalScore)),
		widget.NewFormItem("Revised ATS Score", container.NewBorder(nil, nil, nil, a.revisedBand, a.revisedScore)),
		widget.NewFormItem("Improvement", a.improvement),
	)

	a.feedbackList = widget.NewList(
		func() int {
			return len(a.feedback)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("Template")
			label.Wrapping = fyne.TextWrapWord
			return label
		},
		func(id widget.ListItemID, cell fyne.CanvasObject) {
			if id < len(a.feedback) {
				cell.(*widget.Label).SetText(render.Bullet + " " + a.feedback[id])
			}
		},
	)

	a.resumePreview = widget.NewLabel("")
	a.resumePreview.Wrapping = fyne.TextWrapWord

	a.copyBtn = widget.NewButton("Copy Text", a.handleCopy)
	a.downloadPDFBtn = widget.NewButton("Download PDF", func() {
		a.handleSave(render.PDFFileName, ".pdf", a.session.PDF)
	})
	a.downloadDOCXBtn = widget.NewButton("Download DOCX", func() {
		a.handleSave(render.DOCXFileName, ".docx", a.session.DOCX)
	})
	a.exportBtn = widget.NewButton("Export Analysis to Excel", func() {
		a.handleSave(export.WorkbookFileName, ".xlsx", a.session.Workbook)
	})

	details := container.NewAppTabs(
		container.NewTabItem("Feedback", a.feedbackList),
		container.NewTabItem("Revised Resume", container.NewVScroll(a.resumePreview)),
	)

	return container.NewBorder(
		container.NewVBox(widget.NewLabel("Results"), scores, widget.NewSeparator()),
		container.NewHBox(a.copyBtn, a.downloadPDFBtn, a.downloadDOCXBtn, a.exportBtn),
		nil, nil,
		details,
	)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	current := a.config.Get()

	providerSelect := widget.NewSelect([]string{config.ProviderGemini, config.ProviderVertex}, nil)
	providerSelect.SetSelected(current.Provider)

	modelEntry := widget.NewEntry()
	modelEntry.SetText(current.Model)

	apiKeyEntry := widget.NewPasswordEntry()
	apiKeyEntry.SetText(current.APIKey)
	apiKeyEntry.SetPlaceHolder("or set GEMINI_API_KEY")

	projectEntry := widget.NewEntry()
	projectEntry.SetText(current.GoogleCloudProject)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(current.GoogleCloudLocation)

	googleCredsEntry := widget.NewEntry()
	googleCredsEntry.SetText(current.GoogleCredentialsPath)

	googleCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				googleCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Provider", providerSelect),
		widget.NewFormItem("Model", modelEntry),
		widget.NewFormItem("Gemini API Key", apiKeyEntry),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Google Credentials", container.NewBorder(nil, nil, nil, googleCredsBtn, googleCredsEntry)),
	)

	apply := func() *config.Config {
		updated := *a.config.Get()
		updated.Provider = providerSelect.Selected
		updated.Model = strings.TrimSpace(modelEntry.Text)
		updated.APIKey = strings.TrimSpace(apiKeyEntry.Text)
		updated.GoogleCloudProject = strings.TrimSpace(projectEntry.Text)
		updated.GoogleCloudLocation = strings.TrimSpace(locationEntry.Text)
		updated.GoogleCredentialsPath = strings.TrimSpace(googleCredsEntry.Text)
		return &updated
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		updated := apply()
		if err := updated.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		if err := updated.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		a.config.Set(updated)

		dialog.ShowInformation("Success", "Settings saved successfully", a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		updated := apply()
		if err := updated.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}

		go func() {
			client, err := llm.NewClient(context.Background(), updated)
			if err == nil {
				client.Close()
			}
			fyne.Do(func() {
				if err != nil {
					a.showError(err)
					return
				}
				dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
			})
		}()
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

// refresh mirrors a session snapshot into the widgets
func (a *App) refresh(snap session.Snapshot) {
	busy := snap.State == session.StateParsingFile || snap.State == session.StateAnalyzing

	if snap.FileName != "" {
		a.fileLabel.SetText(snap.FileName)
	} else {
		a.fileLabel.SetText("No file selected")
	}

	setEnabled(a.selectFileBtn, !busy)
	setEnabled(a.removeFileBtn, !busy && snap.FileName != "")
	setEnabled(a.fetchBtn, snap.State != session.StateAnalyzing)
	setEnabled(a.submitBtn, snap.CanSubmit)
	if snap.State == session.StateAnalyzing {
		a.jobDescText.Disable()
	} else {
		a.jobDescText.Enable()
	}

	if busy {
		a.progressBar.Show()
		a.progressBar.Start()
	} else {
		a.progressBar.Stop()
		a.progressBar.Hide()
	}

	switch snap.State {
	case session.StateParsingFile:
		a.statusLabel.SetText("Reading " + snap.FileName + "...")
	case session.StateAnalyzing:
		a.statusLabel.SetText("Analyzing and revising your resume...")
	case session.StateError:
		a.statusLabel.SetText("Error: " + snap.ErrorMessage)
	case session.StateResultReady:
		a.statusLabel.SetText("Done! Your revised resume is ready.")
	case session.StateFileReady:
		a.statusLabel.SetText("Ready to analyze")
	default:
		a.statusLabel.SetText("Select a resume and paste a job description")
	}

	a.showResult(snap.Result)
}

// showResult fills the results panel, or clears it when result is nil
func (a *App) showResult(result *models.AnalysisResult) {
	hasResult := result != nil
	for _, btn := range []*widget.Button{a.copyBtn, a.downloadPDFBtn, a.downloadDOCXBtn, a.exportBtn} {
		setEnabled(btn, hasResult)
	}

	if !hasResult {
		a.originalScore.SetValue(0)
		a.revisedScore.SetValue(0)
		a.originalBand.SetText("")
		a.revisedBand.SetText("")
		a.improvement.SetText("")
		a.feedback = nil
		a.feedbackList.Refresh()
		a.resumePreview.SetText("")
		return
	}

	a.originalScore.SetValue(float64(result.OriginalScore))
	a.originalBand.SetText(models.ScoreBand(result.OriginalScore))
	a.revisedScore.SetValue(float64(result.RevisedScore))
	a.revisedBand.SetText(models.ScoreBand(result.RevisedScore))
	a.improvement.SetText(fmt.Sprintf("%+d points", result.Improvement()))
	a.feedback = result.FeedbackItems()
	a.feedbackList.Refresh()
	a.resumePreview.SetText(render.PlainText(result.RevisedResume))
}

// handleSelectFile opens a file picker limited to resume documents
func (a *App) handleSelectFile() {
	fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}

		upload, err := a.fileHandler.ReadUpload(uc.URI().Name(), uc)
		uc.Close()
		if err != nil {
			a.showError(err)
			return
		}

		go func() {
			if err := a.session.SelectFile(context.Background(), upload); err != nil && !errors.Is(err, session.ErrSuperseded) {
				fyne.Do(func() { a.showError(err) })
			}
		}()
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter(ingestion.AcceptedExtensions))
	fd.Show()
}

func (a *App) handleRemoveFile() {
	if err := a.session.RemoveFile(); err != nil {
		a.showError(err)
	}
}

func (a *App) handleJobDescriptionChanged(text string) {
	if err := a.session.SetJobDescription(text); err != nil {
		slog.Debug("job description edit refused", "error", err)
	}
}

// handleFetchPosting replaces the job description with the posting text
func (a *App) handleFetchPosting() {
	url := strings.TrimSpace(a.jobURLEntry.Text)
	if url == "" {
		return
	}

	a.fetchBtn.Disable()
	go func() {
		text, err := ingestion.FetchJobPosting(context.Background(), nil, url)
		fyne.Do(func() {
			a.fetchBtn.Enable()
			if err != nil {
				slog.Warn("failed to fetch job posting", "url", url, "error", err)
				dialog.ShowError(fmt.Errorf("could not read a job description from that URL: %w", err), a.mainWindow)
				return
			}
			a.jobDescText.SetText(text)
		})
	}()
}

// handleSubmit runs the analysis in the background
func (a *App) handleSubmit() {
	if !a.session.CanSubmit() {
		a.showError(apperr.New(apperr.IncompleteUserInput, "Please provide both your resume and the job description."))
		return
	}

	go func() {
		result, err := a.session.Submit(context.Background())
		fyne.Do(func() {
			if errors.Is(err, session.ErrSuperseded) {
				return
			}
			if err != nil {
				a.showError(err)
				return
			}
			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Resume Revised",
				Content: fmt.Sprintf("ATS score %d -> %d", result.OriginalScore, result.RevisedScore),
			})
		})
	}()
}

func (a *App) handleReset() {
	a.session.Reset()
	a.jobURLEntry.SetText("")
	a.jobDescText.SetText("")
}

// handleCopy copies the plain-text revised resume
func (a *App) handleCopy() {
	cb := session.ClipboardFunc(func(text string) error {
		clipboard := a.fyneApp.Clipboard()
		if clipboard == nil {
			return fmt.Errorf("clipboard is not available")
		}
		clipboard.SetContent(text)
		return nil
	})
	if err := a.session.CopyText(cb); err != nil {
		a.showError(err)
		return
	}
	a.statusLabel.SetText("Copied!")
}

// handleSave renders one output and writes it where the user chooses
func (a *App) handleSave(defaultName, ext string, produce func() ([]byte, error)) {
	data, err := produce()
	if err != nil {
		a.showError(err)
		return
	}

	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if _, err := uc.Write(data); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save: %w", err), a.mainWindow)
			return
		}

		slog.Info("saved output", "path", uc.URI().Path(), "bytes", len(data))
		dialog.ShowInformation("Success", "Saved "+filepath.Base(uc.URI().Path()), a.mainWindow)
	}, a.mainWindow)
	fd.SetFileName(defaultName)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	fd.Show()
}

// showError shows the user-facing message of err
func (a *App) showError(err error) {
	dialog.ShowError(errors.New(apperr.UserMessage(err)), a.mainWindow)
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}
