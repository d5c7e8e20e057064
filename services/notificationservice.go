package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"taskhub/model"
)

const taskAssignedSubject = "New Task Assigned"

var taskAssignedTemplate = template.Must(template.New("task-assigned").Parse(`
  <div style="font-family: Arial; padding: 20px;">
    <h2>Hello {{.Name}},</h2>
    <p>You have been assigned a new task:</p>

    <div style="padding: 15px; background: #f5f5f5; border-left: 4px solid #3b82f6; margin: 20px 0;">
      <h3 style="margin: 0;">{{.Title}}</h3>
      <p style="margin: 10px 0;">{{.Description}}</p>
      <p><strong>Priority:</strong> {{.Priority}}</p>
      <p><strong>Due Date:</strong> {{.DueDate}}</p>
    </div>

    <p>Regards,</p>
    <p><strong>Task Management System</strong></p>
  </div>
`))

type Notifier struct {
	logger zerolog.Logger
	mailer Mailer
}

func NewNotifier(logger zerolog.Logger, mailer Mailer) *Notifier {
	return &Notifier{logger: logger, mailer: mailer}
}

// TaskAssigned emails the assignee about a newly created task.
func (n *Notifier) TaskAssigned(ctx context.Context, assignee *model.User, task *model.Task) error {
	body, err := RenderTaskAssigned(assignee, task)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, assignee.Email, taskAssignedSubject, body); err != nil {
		return fmt.Errorf("send task assigned email: %w", err)
	}

	n.logger.Info().
		Str("task_id", task.TaskID).
		Str("to", assignee.Email).
		Msg("sent task assigned email")
	return nil
}

func RenderTaskAssigned(assignee *model.User, task *model.Task) (string, error) {
	var buf bytes.Buffer
	err := taskAssignedTemplate.Execute(&buf, struct {
		Name, Title, Description, Priority, DueDate string
	}{
		Name:        assignee.Name,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		DueDate:     task.DueDate.Format("1/2/2006"),
	})
	if err != nil {
		return "", fmt.Errorf("render task assigned email: %w", err)
	}
	return buf.String(), nil
}
