// Package pipeline sequences one job application end to end: resolve the
// input to text, extract the JD, pick and mutate a resume template, compile
// it, generate outreach drafts, and persist job + run records.
//
// The machine is linear and forward-only. Every stage after template
// selection catches its own failure, appends it to the pack's error list,
// and lets the remaining stages run; only a missing template aborts the run.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/karan/inbox-agent/internal/config"
	"github.com/karan/inbox-agent/internal/drafts"
	"github.com/karan/inbox-agent/internal/evals"
	"github.com/karan/inbox-agent/internal/gcal"
	"github.com/karan/inbox-agent/internal/gdrive"
	"github.com/karan/inbox-agent/internal/ingest"
	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/ocr"
	"github.com/karan/inbox-agent/internal/profile"
	"github.com/karan/inbox-agent/internal/prompts"
	"github.com/karan/inbox-agent/internal/resume"
	"github.com/karan/inbox-agent/internal/store"
)

// AgentName identifies this pipeline in run telemetry.
const AgentName = "inbox"

// Deps wires the pipeline's collaborators. Client and Store are required;
// the rest are optional and their stages degrade to no-ops or errors when
// absent.
type Deps struct {
	Settings config.Settings
	Client   llm.Client
	Store    *store.Store
	Cache    *jd.Cache

	Profile    profile.Profile
	BulletBank []string

	OCR       ocr.Extractor
	Uploader  gdrive.Uploader
	Scheduler gcal.Scheduler

	// Compile overrides the pdflatex compiler; nil uses the real one.
	Compile resume.CompileFunc

	CostResolver *llm.CostResolver
	Logger       zerolog.Logger
}

// Pipeline runs application workflows. Safe for concurrent Run calls: each
// run owns its pack and scratch files, sharing only the JD cache and store.
type Pipeline struct {
	deps Deps
	runs *evals.Logger
}

// New builds a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		deps: deps,
		runs: &evals.Logger{Store: deps.Store, RunsDir: deps.Settings.RunsDir},
	}
}

// Input is one inbound application request.
type Input struct {
	RawText      string
	ImagePath    string
	SkipUpload   bool
	SkipCalendar bool
}

func (in Input) mode() string {
	switch {
	case in.ImagePath != "":
		return "image"
	case ingest.ExtractFirstURL(in.RawText) != "":
		return "url"
	default:
		return "text"
	}
}

// Run executes the pipeline and always returns a pack, however degraded.
// Exactly one run record is written per call.
func (p *Pipeline) Run(ctx context.Context, in Input) *ApplicationPack {
	start := time.Now()
	pack := &ApplicationPack{Errors: []string{}}
	inputMode := in.mode()

	runID, err := p.runs.StartRun(ctx, AgentName)
	if err != nil {
		pack.addError("telemetry", err)
	}
	pack.RunID = runID
	log := p.deps.Logger.With().Str("run_id", runID).Logger()
	log.Info().Str("input_mode", inputMode).Msg("pipeline started")

	status := store.RunStatusCompleted
	defer func() {
		p.finalize(runID, inputMode, status, start, in, pack, log)
	}()

	// Input resolution. A failure here leaves rawText empty; extraction
	// then fails too and the run proceeds with an unmutated template.
	rawText := in.RawText
	p.stage(pack, log, "input", func() error {
		text, err := p.resolveInput(ctx, in, pack)
		if err != nil {
			return err
		}
		rawText = text
		return nil
	})

	// JD extraction and validation.
	p.stage(pack, log, "jd extraction", func() error {
		if strings.TrimSpace(rawText) == "" {
			return fmt.Errorf("no input text to extract from")
		}
		schema, usage, err := jd.Extract(ctx, p.deps.Client, rawText)
		p.addUsage(pack, usage)
		if err != nil {
			return err
		}
		pack.JD = &schema
		hash := schema.Hash()
		if p.deps.Cache != nil {
			if _, hit := p.deps.Cache.Get(hash); hit {
				log.Info().Str("jd_hash", hash).Msg("jd cache hit")
			} else {
				p.deps.Cache.Put(schema)
			}
		}
		log.Info().Str("company", schema.Company).Str("role", schema.Role).Msg("jd extracted")
		return nil
	})

	// Template selection. The one fatal stage: without a template there is
	// nothing to build.
	var skills []string
	if pack.JD != nil {
		skills = pack.JD.Skills
	}
	selection, err := resume.SelectBaseResume(skills, p.deps.Settings.ResumesDir)
	if err != nil {
		status = store.RunStatusFailed
		pack.Errors = []string{fmt.Sprintf("template selection: %v", err)}
		log.Error().Err(err).Msg("template selection failed, aborting run")
		return pack
	}
	pack.ResumeUsed = filepath.Base(selection.Path)
	pack.FitScore = selection.FitPercent()
	log.Info().Str("template", pack.ResumeUsed).Int("fit", pack.FitScore).Msg("template selected")

	originalTex, err := os.ReadFile(selection.Path)
	if err != nil {
		status = store.RunStatusFailed
		pack.Errors = []string{fmt.Sprintf("template selection: %v", err)}
		return pack
	}
	original := string(originalTex)

	// Mutation. Any failure (LLM, bad JSON, cap exceeded) falls back to the
	// unmodified template.
	pack.MutatedTex = original
	p.stage(pack, log, "mutation", func() error {
		if pack.JD == nil {
			return fmt.Errorf("no JD to tailor against")
		}
		muts, usage, err := p.proposeMutations(ctx, *pack.JD, original)
		p.addUsage(pack, usage)
		if err != nil {
			return err
		}
		mutated, err := resume.ApplyMutations(original, muts, resume.MutationOptions{
			MaxCount: p.deps.Settings.MaxMutations,
		})
		if err != nil {
			return err
		}
		pack.MutatedTex = mutated
		return nil
	})

	// Content-safety evaluation, advisory only.
	if !evals.CheckEditScope(original, pack.MutatedTex) {
		pack.Evals.EditScopeViolations = 1
	}
	pack.Evals.ForbiddenClaimsCount = evals.CheckForbiddenClaims(
		evals.ExtractBullets(original),
		evals.ExtractBullets(pack.MutatedTex),
		p.deps.BulletBank,
	)

	// Compilation with rollback.
	p.stage(pack, log, "compile", func() error {
		result, err := resume.CompileWithRollback(ctx, resume.CompileJob{
			MutatedTex:   pack.MutatedTex,
			OriginalTex:  original,
			BaseName:     pack.ResumeUsed,
			Company:      pack.Company(),
			Role:         pack.Role(),
			JDHash:       p.jdHash(pack),
			ArtifactsDir: p.deps.Settings.ArtifactsDir(),
			Timeout:      p.deps.Settings.CompileTimeout,
			Compile:      p.deps.Compile,
		})
		if err != nil {
			return err
		}
		pack.PDFPath = result.PDFPath
		pack.RollbackUsed = result.RollbackUsed
		if result.RollbackUsed {
			log.Warn().Msg("mutated compile failed, shipped fallback artifact")
		}
		return nil
	})

	// Side effects: upload and calendar, both skippable and never fatal.
	if p.deps.Uploader != nil && !in.SkipUpload && pack.PDFPath != "" {
		p.stage(pack, log, "drive upload", func() error {
			link, err := p.deps.Uploader.Upload(ctx, pack.PDFPath, filepath.Base(pack.PDFPath))
			if err != nil {
				return err
			}
			pack.DriveLink = link
			return nil
		})
	}
	if p.deps.Scheduler != nil && !in.SkipCalendar {
		p.stage(pack, log, "calendar", func() error {
			link, err := p.deps.Scheduler.ScheduleFollowup(ctx,
				pack.Company(), pack.Role(), time.Now().Add(gcal.DefaultReminderDelay))
			if err != nil {
				return err
			}
			pack.CalendarLink = link
			return nil
		})
	}

	p.generateDrafts(ctx, pack, log)

	// Persist the job record.
	if pack.JD != nil {
		p.stage(pack, log, "persist job", func() error {
			fit := pack.FitScore
			jobID, err := p.deps.Store.InsertJob(ctx, pack.Company(), pack.Role(), p.jdHash(pack),
				store.InsertJobParams{
					FitScore:   &fit,
					ResumeUsed: pack.ResumeUsed,
					DriveLink:  pack.DriveLink,
				})
			if err != nil {
				return err
			}
			pack.JobID = jobID
			return nil
		})
	}

	return pack
}

func (p *Pipeline) stage(pack *ApplicationPack, log zerolog.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		log.Error().Err(err).Str("stage", name).Msg("stage failed")
		pack.addError(name, err)
	}
}

func (p *Pipeline) addUsage(pack *ApplicationPack, usage llm.Usage) {
	pack.TokensUsed += usage.TotalTokens
	pack.CostEstimate += usage.CostEstimate
}

func (p *Pipeline) jdHash(pack *ApplicationPack) string {
	if pack.JD == nil {
		return ""
	}
	return pack.JD.Hash()
}

// resolveInput turns the request into raw JD text: OCR for screenshots, a
// fetch for URLs, passthrough otherwise.
func (p *Pipeline) resolveInput(ctx context.Context, in Input, pack *ApplicationPack) (string, error) {
	if in.ImagePath != "" {
		if p.deps.OCR == nil {
			return "", fmt.Errorf("no OCR extractor configured")
		}
		raw, err := p.deps.OCR.ExtractText(ctx, in.ImagePath)
		if err != nil {
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		if err := ocr.DefaultQualityGate().Check(raw); err != nil {
			var qe *ocr.QualityError
			if errors.As(err, &qe) {
				pack.OCRRejection = qe
			}
			return "", err
		}
		cleaned, usage, err := ocr.Cleanup(ctx, p.deps.Client, raw)
		p.addUsage(pack, usage)
		if err != nil {
			// Raw OCR output is still usable, just rougher.
			return raw, nil
		}
		return cleaned, nil
	}

	if url := ingest.ExtractFirstURL(in.RawText); url != "" {
		text, err := ingest.FetchURLText(ctx, url, nil)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	return in.RawText, nil
}

// proposeMutations asks the model for find/replace edits against the
// template's editable bullets.
func (p *Pipeline) proposeMutations(ctx context.Context, schema jd.Schema, tex string) ([]resume.Mutation, llm.Usage, error) {
	regions := resume.ParseEditableRegions(tex)
	if len(regions) == 0 {
		return nil, llm.Usage{}, nil
	}

	var editable strings.Builder
	for _, region := range regions {
		editable.WriteString(region.Content)
		editable.WriteString("\n")
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Job: %s at %s\n", schema.Role, schema.Company)
	if schema.Description != "" {
		fmt.Fprintf(&user, "Summary: %s\n", schema.Description)
	}
	if len(schema.Skills) > 0 {
		fmt.Fprintf(&user, "Skills sought: %s\n", strings.Join(schema.Skills, ", "))
	}
	fmt.Fprintf(&user, "\nEditable bullets:\n%s", editable.String())
	if len(p.deps.BulletBank) > 0 {
		fmt.Fprintf(&user, "\nApproved bullet bank:\n%s\n", strings.Join(p.deps.BulletBank, "\n"))
	}

	system := prompts.MustLoad("inbox.json", "resume_mutate", 1)
	resp, err := p.deps.Client.Complete(ctx, system, user.String(), true)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("mutation proposal failed: %w", err)
	}

	var proposal struct {
		Mutations []resume.Mutation `json:"mutations"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(resp.Text)), &proposal); err != nil {
		return nil, resp.Usage, fmt.Errorf("bad mutation JSON: %w", err)
	}
	return proposal.Mutations, resp.Usage, nil
}

// generateDrafts produces the three outreach drafts concurrently. Each
// failure is recorded independently; the others still land.
func (p *Pipeline) generateDrafts(ctx context.Context, pack *ApplicationPack, log zerolog.Logger) {
	if pack.JD == nil {
		pack.addError("drafts", fmt.Errorf("no JD to draft against"))
		return
	}
	req := drafts.Request{Profile: p.deps.Profile, JD: *pack.JD}

	var email, dm, referral drafts.Draft
	var emailErr, dmErr, referralErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		email, emailErr = drafts.GenerateEmail(gctx, p.deps.Client, req)
		return nil
	})
	g.Go(func() error {
		dm, dmErr = drafts.GenerateLinkedInDM(gctx, p.deps.Client, req)
		return nil
	})
	g.Go(func() error {
		referral, referralErr = drafts.GenerateReferral(gctx, p.deps.Client, req)
		return nil
	})
	_ = g.Wait()

	if emailErr != nil {
		p.stage(pack, log, "email draft", func() error { return emailErr })
	} else {
		pack.Email = &email
		p.addUsage(pack, email.Usage)
	}
	if dmErr != nil {
		p.stage(pack, log, "linkedin draft", func() error { return dmErr })
	} else {
		pack.LinkedInDM = &dm
		p.addUsage(pack, dm.Usage)
	}
	if referralErr != nil {
		p.stage(pack, log, "referral draft", func() error { return referralErr })
	} else {
		pack.Referral = &referral
		p.addUsage(pack, referral.Usage)
	}
}

// finalize assembles eval results, writes the run record exactly once, and
// schedules the deferred cost patch.
func (p *Pipeline) finalize(runID, inputMode, status string, start time.Time, in Input, pack *ApplicationPack, log zerolog.Logger) {
	pack.Evals.CompileSuccess = evals.CheckCompile(pack.PDFPath)
	pack.Evals.RollbackUsed = pack.RollbackUsed
	pack.Evals.CostOK = evals.CheckCost(pack.CostEstimate, p.deps.Settings.MaxCostPerJob)
	pack.Evals.JDSchemaValid = pack.JD != nil
	if pack.LinkedInDM != nil {
		pack.Evals.DraftLengthOK = evals.CheckDraftLength(pack.LinkedInDM.Text, drafts.LinkedInMaxChars)
	}

	if runID == "" {
		return
	}

	var jobID *int64
	if pack.JobID != 0 {
		id := pack.JobID
		jobID = &id
	}
	completion := store.RunCompletion{
		Status:       status,
		JobID:        jobID,
		EvalResults:  pack.Evals,
		TokensUsed:   pack.TokensUsed,
		CostEstimate: pack.CostEstimate,
		LatencyMS:    int(time.Since(start).Milliseconds()),
		InputMode:    inputMode,
		SkipUpload:   in.SkipUpload,
		SkipCalendar: in.SkipCalendar,
		Errors:       pack.Errors,
		Context: map[string]any{
			"jd_hash": p.jdHash(pack),
			"company": pack.Company(),
			"role":    pack.Role(),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.runs.FinishRun(ctx, runID, AgentName, completion); err != nil {
		log.Error().Err(err).Msg("failed to finalize run record")
	}

	if p.deps.CostResolver != nil && pack.TokensUsed > 0 {
		p.deps.CostResolver.Schedule(runID, p.deps.Settings.LLMModel, pack.TokensUsed)
	}
	log.Info().
		Str("status", status).
		Int("errors", len(pack.Errors)).
		Int("tokens", pack.TokensUsed).
		Msg("pipeline finished")
}
