package types

import "resume-chatbot-go/internal/constants"

// FieldName 表示一条简历记录中的字段
type FieldName string

const (
	// FieldFullName 姓名
	FieldFullName FieldName = "name"
	// FieldEmail 邮箱
	FieldEmail FieldName = "email"
	// FieldPhone 电话
	FieldPhone FieldName = "phone"
	// FieldEducation 教育经历
	FieldEducation FieldName = "education"
	// FieldExperience 工作经历
	FieldExperience FieldName = "experience"
	// FieldSkills 技能
	FieldSkills FieldName = "skills"
	// FieldProjects 项目
	FieldProjects FieldName = "projects"
	// FieldCertifications 证书
	FieldCertifications FieldName = "certifications"
)

// PersonalInfo 个人信息
type PersonalInfo struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Phone string `json:"Phone"`
}

// Resume 一份文档对应的结构化记录。
// JSON 字段名与输出文件格式保持一致，加载语料时按同样的键读取。
type Resume struct {
	Personal       PersonalInfo `json:"Personal Information"`
	Education      string       `json:"Education History"`
	Experience     string       `json:"Work Experience"`
	Skills         string       `json:"Skills"`
	Projects       string       `json:"Projects"`
	Certifications string       `json:"Certifications"`

	// Source 来源文件名，仅用于展示和日志
	Source string `json:"source,omitempty"`
}

// NewEmptyResume 返回所有字段均为占位值的记录
func NewEmptyResume() Resume {
	return Resume{
		Personal: PersonalInfo{
			Name:  constants.NotProvided,
			Email: constants.NotProvided,
			Phone: constants.NotProvided,
		},
		Education:      constants.NotProvided,
		Experience:     constants.NotProvided,
		Skills:         constants.NotProvided,
		Projects:       constants.NotProvided,
		Certifications: constants.NotProvided,
	}
}

// Set 按字段名写入；未知字段忽略
func (r *Resume) Set(field FieldName, value string) {
	switch field {
	case FieldFullName:
		r.Personal.Name = value
	case FieldEmail:
		r.Personal.Email = value
	case FieldPhone:
		r.Personal.Phone = value
	case FieldEducation:
		r.Education = value
	case FieldExperience:
		r.Experience = value
	case FieldSkills:
		r.Skills = value
	case FieldProjects:
		r.Projects = value
	case FieldCertifications:
		r.Certifications = value
	}
}

// Get 按字段名读取；未知字段返回空串
func (r Resume) Get(field FieldName) string {
	switch field {
	case FieldFullName:
		return r.Personal.Name
	case FieldEmail:
		return r.Personal.Email
	case FieldPhone:
		return r.Personal.Phone
	case FieldEducation:
		return r.Education
	case FieldExperience:
		return r.Experience
	case FieldSkills:
		return r.Skills
	case FieldProjects:
		return r.Projects
	case FieldCertifications:
		return r.Certifications
	}
	return ""
}

// FillMissing 把空字段补成占位值，用于 LLM 返回的不完整 JSON
func (r *Resume) FillMissing() {
	for _, f := range AllFields {
		if r.Get(f) == "" {
			r.Set(f, constants.NotProvided)
		}
	}
}

// AllFields 记录中的全部字段，按输出顺序
var AllFields = []FieldName{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldEducation,
	FieldExperience,
	FieldSkills,
	FieldProjects,
	FieldCertifications,
}

// IsProvided 判断字段值是否为真实提取结果
func IsProvided(value string) bool {
	return value != "" && value != constants.NotProvided
}
