package models

type Announcement struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Category string `json:"category" yaml:"category"`
	Date     string `json:"date" yaml:"date"`
	Author   string `json:"author" yaml:"author"`
}

type JobPosting struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	Location    string `json:"location" yaml:"location"`
	Description string `json:"description" yaml:"description"`
	PostedDate  string `json:"postedDate" yaml:"postedDate"`
	Contact     string `json:"contact" yaml:"contact"`
}
