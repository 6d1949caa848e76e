package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createPollInput struct {
	ChannelID     string   `json:"channel_id"`
	Question      string   `json:"question"`
	Answers       []string `json:"answers" jsonschema:"2 to 10 answer options"`
	DurationHours int      `json:"duration_hours,omitempty" jsonschema:"poll length in hours, 1 to 768; defaults to 24"`
	Multiselect   bool     `json:"multiselect,omitempty" jsonschema:"allow voting for multiple answers"`
}

func (t *Toolkit) registerPollTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_poll",
		Description: "Create a poll in a channel.",
	}, t.handleCreatePoll)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "end_poll",
		Description: "End a poll immediately.",
	}, t.handleEndPoll)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_poll_results",
		Description: "Get the current results of a poll message.",
	}, t.handlePollResults)
}

func (t *Toolkit) handleCreatePoll(ctx context.Context, _ *mcp.CallToolRequest, in createPollInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(in.Answers) < 2 || len(in.Answers) > 10 {
		return errorResult("polls require between 2 and 10 answers"), nil, nil
	}

	duration := in.DurationHours
	if duration <= 0 {
		duration = 24
	}

	answers := make([]discordgo.PollAnswer, 0, len(in.Answers))
	for _, a := range in.Answers {
		answers = append(answers, discordgo.PollAnswer{
			Media: &discordgo.PollMedia{Text: a},
		})
	}

	done := t.announce(ctx, "Creating poll")
	defer done()

	msg, err := dg.ChannelMessageSendComplex(in.ChannelID, &discordgo.MessageSend{
		Poll: &discordgo.Poll{
			Question:         discordgo.PollMedia{Text: in.Question},
			Answers:          answers,
			AllowMultiselect: in.Multiselect,
			Duration:         duration,
		},
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindPoll, "creating poll", err))
	}
	return jsonResult(map[string]any{
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"question":   in.Question,
		"answers":    in.Answers,
	})
}

func (t *Toolkit) handleEndPoll(ctx context.Context, _ *mcp.CallToolRequest, in messageRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Ending poll")
	defer done()

	msg, err := dg.PollExpire(in.ChannelID, in.MessageID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindPoll, "ending poll", err))
	}
	return jsonResult(pollResults(msg))
}

func (t *Toolkit) handlePollResults(ctx context.Context, _ *mcp.CallToolRequest, in messageRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	msg, err := dg.ChannelMessage(in.ChannelID, in.MessageID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindPoll, "fetching poll", err))
	}
	if msg.Poll == nil {
		return errorResult("message " + in.MessageID + " carries no poll"), nil, nil
	}
	return jsonResult(pollResults(msg))
}

func pollResults(msg *discordgo.Message) map[string]any {
	out := map[string]any{"message_id": msg.ID, "channel_id": msg.ChannelID}
	poll := msg.Poll
	if poll == nil {
		return out
	}

	out["question"] = poll.Question.Text
	counts := map[int]int{}
	finalized := false
	if poll.Results != nil {
		finalized = poll.Results.Finalized
		for _, c := range poll.Results.AnswerCounts {
			counts[c.ID] = c.Count
		}
	}
	out["finalized"] = finalized

	answers := make([]map[string]any, 0, len(poll.Answers))
	for _, a := range poll.Answers {
		entry := map[string]any{"answer_id": a.AnswerID, "votes": counts[a.AnswerID]}
		if a.Media != nil {
			entry["text"] = a.Media.Text
		}
		answers = append(answers, entry)
	}
	out["answers"] = answers
	return out
}
