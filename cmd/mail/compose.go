package main

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	template string
	subject  string
}

var mailKinds = map[string]mailKind{
	"balancing_finished": {
		template: "balancing_finished_email.html",
		subject:  "分队系统 - 分队完成",
	},
}

// composeMail 根据邮件类型选择模板并生成邮件
func composeMail(templateDir string, from string, mailMessage domain.MailMessage) (*mail.Msg, error) {
	kind, ok := mailKinds[mailMessage.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", mailMessage.Type)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(mailMessage.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, kind.template))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(kind.subject)

	return m, nil
}
