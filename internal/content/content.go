// Package content holds the text shown on the portfolio page.
package content

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jallerangel/portfolio/internal/config"
)

// Link is a labelled outbound link.
type Link struct {
	Label string
	URL   string
}

// Technology is one card of the stack section.
type Technology struct {
	Name  string
	Color string // Brand colour, "#rrggbb"
}

// Accent returns the card colour. White logos would vanish against the
// light card text, so they use the hover amber instead.
func (t Technology) Accent() colorful.Color {
	c, err := colorful.Hex(t.Color)
	if err != nil || t.Color == "#FFFFFF" {
		c, _ = colorful.Hex("#f59e0b")
	}
	return c
}

// Milestone is one entry of the timeline.
type Milestone struct {
	Year        string
	Title       string
	Description string
	Tags        []string
}

// Project is one card of the projects section.
type Project struct {
	Title       string
	Description string
	URL         string
	Tags        []string
}

// Section headings.
const (
	StackTitle       = "My Tech Stack"
	StackSubtitle    = "From modern interfaces to cloud-native infrastructure"
	TimelineTitle    = "My Journey"
	TimelineSubtitle = "From first lines of code to building real-world solutions."
	ProjectsTitle    = "Featured Projects"
	ProjectsSubtitle = "A selection of my best work, from idea to production."
	ProjectsEmpty    = "Projects are on their way. Check back soon."
)

// Profile is the cover section.
var Profile = struct {
	Name    string
	Titles  []string
	Summary string
	Links   []Link
}{
	Name: "Luis Jaller",
	Titles: []string{
		"Full Stack Developer (Mid-Level)",
		"Node.js & NestJS Backend Developer",
		"React & Next.js Frontend Developer",
		"Cloud & DevOps (AWS, K8s, Terraform)",
	},
	Summary: `Mid-level Full Stack Developer with experience in Node.js, NestJS, React, ` +
		`Next.js and Expo. Focused on building scalable, maintainable web and mobile ` +
		`applications, with cloud experience in AWS, Kubernetes and Terraform`,
	Links: []Link{
		{Label: "GitHub", URL: "https://github.com/jallerangel"},
		{Label: "LinkedIn", URL: "https://www.linkedin.com/in/jallerangel/"},
		{Label: "Mail", URL: "mailto:jallerangel06@gmail.com"},
	},
}

// Technologies lists the stack cards in display order.
var Technologies = []Technology{
	{Name: "TypeScript", Color: "#3178C6"},
	{Name: "Node.js", Color: "#339933"},
	{Name: "NestJS", Color: "#E0234E"},
	{Name: "React", Color: "#61DAFB"},
	{Name: "Next.js", Color: "#FFFFFF"},
	{Name: "Expo", Color: "#FFFFFF"},
	{Name: "Kubernetes", Color: "#326CE5"},
	{Name: "Helm", Color: "#2496ED"},
	{Name: "Terraform", Color: "#7B42BC"},
	{Name: "AWS", Color: "#FF9900"},
}

// Timeline is ordered oldest first.
var Timeline = []Milestone{
	{
		Year:  "2023",
		Title: "The Beginning",
		Description: `I built a strong foundation in HTML, CSS, and JavaScript before transitioning ` +
			`to professional client projects, where I gained hands-on experience with backend ` +
			`development and modern workflows.`,
		Tags: []string{"HTML", "CSS", "JavaScript"},
	},
	{
		Year:  "2023",
		Title: "Backend & DevOps Foundations",
		Description: `Delivered backend solutions with Node.js and Express and implemented modern ` +
			`DevOps workflows including Docker, Kubernetes, and CI/CD. Gained practical ` +
			`Infrastructure-as-Code experience by deploying Azure resources via Terraform.`,
		Tags: []string{"Node.js", "Express", "Docker", "Kubernetes", "Terraform", "Azure"},
	},
	{
		Year:  "2024",
		Title: "Microservices & Cloud Maturity",
		Description: `Advanced the stack by adopting NestJS for microservices and Helm for Kubernetes ` +
			`resource management. I streamlined delivery via GitHub Actions and established ` +
			`observability with New Relic, fully managed through modular Terraform.`,
		Tags: []string{"NestJS", "Microservices", "Helm Charts", "GitHub Actions", "Terraform", "New Relic"},
	},
	{
		Year:  "2025",
		Title: "Cloud & DevOps on AWS",
		Description: `Delivered cloud-native AWS solutions for a client until mid-2025. Utilized ` +
			`serverless components (Lambda, SQS, EventBridge) and RDS to build scalable systems ` +
			`managed via Infrastructure as Code.`,
		Tags: []string{"AWS", "Lambda", "RDS", "SQS", "EventBridge", "Terraform"},
	},
	{
		Year:  "2025 – 2026",
		Title: "Frontend & Product-Focused Development",
		Description: `Delivered scalable user interfaces using React and Next.js powered by Prisma ORM. ` +
			`Also expanded into mobile development with Expo, engineered NestJS microservices with ` +
			`DynamoDB design contributions, and streamlined deployments using Helm Charts.`,
		Tags: []string{"React", "Next.js", "React Native", "Expo", "NestJS", "DynamoDB", "Prisma", "Helm"},
	},
}

// Projects is empty until the first case studies are written up; the page
// shows ProjectsEmpty in its place.
var Projects []Project

// TitleAt returns the cover title on screen elapsed after the page opened.
// Titles change every config.TitleRotation and wrap around.
func TitleAt(elapsed time.Duration) string {
	titles := Profile.Titles
	if len(titles) == 0 {
		return ""
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return titles[int(elapsed/config.TitleRotation)%len(titles)]
}
