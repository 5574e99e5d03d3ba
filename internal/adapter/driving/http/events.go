package httphandler

import (
	"encoding/json"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// decodeEvent parses a webhook payload into one of the closed set of event
// variants. Event types and actions outside the set the bots act on decode
// to UnrecognizedEvent rather than an error; an error means a recognized
// type carried an undecodable body.
func decodeEvent(eventType string, body []byte) (model.Event, error) {
	switch eventType {
	case "ping":
		var p gh.PingEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decoding ping event: %w", err)
		}
		return model.PingEvent{
			Zen:    p.GetZen(),
			HookID: p.GetHookID(),
		}, nil

	case "issue_comment":
		var e gh.IssueCommentEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("decoding issue_comment event: %w", err)
		}
		if e.GetAction() != "created" {
			return model.UnrecognizedEvent{Type: eventType + "." + e.GetAction()}, nil
		}
		return model.IssueCommentEvent{
			Action:         e.GetAction(),
			Repo:           e.GetRepo().GetFullName(),
			IssueNumber:    e.GetIssue().GetNumber(),
			CommentBody:    e.GetComment().GetBody(),
			CommenterLogin: e.GetComment().GetUser().GetLogin(),
		}, nil

	case "pull_request":
		var e gh.PullRequestEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("decoding pull_request event: %w", err)
		}
		if e.GetAction() != "opened" {
			return model.UnrecognizedEvent{Type: eventType + "." + e.GetAction()}, nil
		}
		pr := e.GetPullRequest()
		return model.PullRequestEvent{
			Action:  e.GetAction(),
			Repo:    e.GetRepo().GetFullName(),
			Number:  pr.GetNumber(),
			Title:   pr.GetTitle(),
			Body:    pr.GetBody(),
			Author:  pr.GetUser().GetLogin(),
			HeadSHA: pr.GetHead().GetSHA(),
			HeadRef: pr.GetHead().GetRef(),
			BaseRef: pr.GetBase().GetRef(),
		}, nil

	default:
		return model.UnrecognizedEvent{Type: eventType}, nil
	}
}
