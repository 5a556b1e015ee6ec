package rendering

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const preamble = `\documentclass[letterpaper,11pt]{article}

\usepackage{latexsym}
\usepackage[empty]{fullpage}
\usepackage{titlesec}
\usepackage[usenames,dvipsnames]{color}
\usepackage{enumitem}
\usepackage[hidelinks]{hyperref}
\usepackage{fancyhdr}
\usepackage[english]{babel}
\usepackage{tabularx}

\pagestyle{fancy}
\fancyhf{}
\fancyfoot{}
\renewcommand{\headrulewidth}{0pt}
\renewcommand{\footrulewidth}{0pt}

\addtolength{\oddsidemargin}{-0.5in}
\addtolength{\evensidemargin}{-0.5in}
\addtolength{\textwidth}{1in}
\addtolength{\topmargin}{-.5in}
\addtolength{\textheight}{1.0in}

\urlstyle{same}
\raggedbottom
\raggedright
\setlength{\tabcolsep}{0in}

\titleformat{\section}{
  \vspace{-4pt}\scshape\raggedright\large
}{}{0em}{}[\color{black}\titlerule \vspace{-5pt}]

\newcommand{\resumeItem}[1]{
  \item\small{#1 \vspace{-2pt}}
}

\newcommand{\resumeSubheading}[4]{
  \vspace{-2pt}\item
    \begin{tabular*}{0.97\textwidth}[t]{l@{\extracolsep{\fill}}r}
      \textbf{#1} & #2 \\
      \textit{\small#3} & \textit{\small #4} \\
    \end{tabular*}\vspace{-7pt}
}

\newcommand{\resumeProjectHeading}[2]{
    \item
    \begin{tabular*}{0.97\textwidth}{l@{\extracolsep{\fill}}r}
      \small#1 & #2 \\
    \end{tabular*}\vspace{-7pt}
}

\renewcommand\labelitemii{$\vcenter{\hbox{\tiny$\bullet$}}$}

\newcommand{\resumeSubHeadingListStart}{\begin{itemize}[leftmargin=0.15in, label={}]}
\newcommand{\resumeSubHeadingListEnd}{\end{itemize}}
\newcommand{\resumeItemListStart}{\begin{itemize}}
\newcommand{\resumeItemListEnd}{\end{itemize}\vspace{-5pt}}

`

// Assemble renders profile as a complete LaTeX document. Entries whose
// inclusion flag is false are skipped and empty sections are omitted.
// The output depends only on the profile snapshot.
func Assemble(profile *types.Profile) string {
	return AssembleData(BuildResumeData(profile))
}

// AssembleData renders already-built resume data.
func AssembleData(data *ResumeData) string {
	var b strings.Builder
	b.Grow(8192)

	b.WriteString(preamble)
	b.WriteString("\\begin{document}\n\n")

	writeHeader(&b, data)
	writeSummary(&b, data.Summary)
	writeEducation(&b, data.Education)
	writeExperience(&b, data.Experience)
	writeSkills(&b, data.SkillGroups)
	writeProjects(&b, data.Projects)
	writeCertificates(&b, data.Certificates)

	b.WriteString("\\end{document}\n")
	return b.String()
}

func writeHeader(b *strings.Builder, data *ResumeData) {
	if data.Name == "" && data.Title == "" && len(data.Contacts) == 0 {
		return
	}

	b.WriteString("\\begin{center}\n")
	if data.Name != "" {
		b.WriteString("    \\textbf{\\Huge \\scshape " + data.Name + "} \\\\ \\vspace{1pt}\n")
	}
	if data.Title != "" {
		b.WriteString("    \\small " + data.Title + " \\\\ \\vspace{1pt}\n")
	}
	if len(data.Contacts) > 0 {
		parts := make([]string, len(data.Contacts))
		for i, c := range data.Contacts {
			if c.URL != "" {
				parts[i] = "\\href{" + c.URL + "}{\\underline{" + c.Text + "}}"
			} else {
				parts[i] = c.Text
			}
		}
		b.WriteString("    \\small " + strings.Join(parts, " $|$ ") + "\n")
	}
	b.WriteString("\\end{center}\n\n")
}

func writeSummary(b *strings.Builder, summary string) {
	if summary == "" {
		return
	}
	b.WriteString("\\section{Summary}\n")
	b.WriteString("\\small{" + summary + "}\n\n")
}

func writeEducation(b *strings.Builder, entries []EducationEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\\section{Education}\n")
	b.WriteString("  \\resumeSubHeadingListStart\n")
	for _, e := range entries {
		b.WriteString("    \\resumeSubheading\n")
		b.WriteString("      {" + e.School + "}{" + e.Location + "}\n")
		b.WriteString("      {" + e.Degree + "}{" + e.DateRange + "}\n")
	}
	b.WriteString("  \\resumeSubHeadingListEnd\n\n")
}

func writeExperience(b *strings.Builder, entries []ExperienceEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\\section{Experience}\n")
	b.WriteString("  \\resumeSubHeadingListStart\n")
	for _, e := range entries {
		b.WriteString("    \\resumeSubheading\n")
		b.WriteString("      {" + e.Position + "}{" + e.DateRange + "}\n")
		b.WriteString("      {" + e.Company + "}{" + e.Location + "}\n")
		writeItems(b, e.Bullets)
	}
	b.WriteString("  \\resumeSubHeadingListEnd\n\n")
}

func writeSkills(b *strings.Builder, groups []SkillGroup) {
	if len(groups) == 0 {
		return
	}
	b.WriteString("\\section{Skills}\n")
	b.WriteString(" \\begin{itemize}[leftmargin=0.15in, label={}]\n")
	b.WriteString("    \\small{\\item{\n")
	for i, g := range groups {
		b.WriteString("     \\textbf{" + g.Domain + "}{: " + strings.Join(g.Skills, ", ") + "}")
		if i < len(groups)-1 {
			b.WriteString(" \\\\")
		}
		b.WriteString("\n")
	}
	b.WriteString("    }}\n")
	b.WriteString(" \\end{itemize}\n\n")
}

func writeProjects(b *strings.Builder, entries []ProjectEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\\section{Projects}\n")
	b.WriteString("  \\resumeSubHeadingListStart\n")
	for _, p := range entries {
		heading := "\\textbf{" + p.Title + "}"
		if p.Technologies != "" {
			heading += " $|$ \\emph{" + p.Technologies + "}"
		}
		if p.GithubURL != "" {
			heading += " $|$ \\href{" + p.GithubURL + "}{\\underline{Code}}"
		}
		if p.LiveURL != "" {
			heading += " $|$ \\href{" + p.LiveURL + "}{\\underline{Live}}"
		}
		b.WriteString("    \\resumeProjectHeading\n")
		b.WriteString("      {" + heading + "}{" + p.DateRange + "}\n")
		writeItems(b, p.Bullets)
	}
	b.WriteString("  \\resumeSubHeadingListEnd\n\n")
}

func writeCertificates(b *strings.Builder, entries []CertificateEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\\section{Certificates}\n")
	b.WriteString("  \\resumeSubHeadingListStart\n")
	for _, c := range entries {
		heading := "\\textbf{" + c.Name + "}"
		if c.Issuer != "" {
			heading += " $|$ \\emph{" + c.Issuer + "}"
		}
		if c.URL != "" {
			heading += " $|$ \\href{" + c.URL + "}{\\underline{Credential}}"
		}
		b.WriteString("    \\resumeProjectHeading\n")
		b.WriteString("      {" + heading + "}{" + c.Date + "}\n")
	}
	b.WriteString("  \\resumeSubHeadingListEnd\n\n")
}

func writeItems(b *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("      \\resumeItemListStart\n")
	for _, item := range items {
		b.WriteString("        \\resumeItem{" + item + "}\n")
	}
	b.WriteString("      \\resumeItemListEnd\n")
}
