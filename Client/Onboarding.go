package Client

import (
	"encoding/json"
	"log"
	"os"
)

// 欢迎笔记内容，仅在新用户首次加载且没有任何笔记时创建
const (
	welcomeNoteTitle   = "Welcome to your Notes!"
	welcomeNoteContent = "<p>This is your first note. You can edit it, pin it, or move it to the trash.</p>" +
		"<p>Use the AI assistant on the right to ask questions or extract text from images.</p>"
)

// OnboardingFlags 每用户的引导标记，持久化在本地JSON文件里
// 文件内容是 userKey -> bool 的映射
type OnboardingFlags struct {
	path string
}

func NewOnboardingFlags(path string) *OnboardingFlags {
	return &OnboardingFlags{path: path}
}

func (f *OnboardingFlags) load() map[string]bool {
	flags := make(map[string]bool)
	data, err := os.ReadFile(f.path)
	if err != nil {
		return flags
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		log.Printf("解析引导标记文件失败: %v", err)
		return make(map[string]bool)
	}
	return flags
}

// Seen 该用户是否已完成过引导
func (f *OnboardingFlags) Seen(userKey string) bool {
	return f.load()[userKey]
}

// MarkSeen 标记引导已完成，写入失败只记录日志
func (f *OnboardingFlags) MarkSeen(userKey string) {
	flags := f.load()
	flags[userKey] = true

	data, err := json.Marshal(flags)
	if err != nil {
		log.Printf("序列化引导标记失败: %v", err)
		return
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		log.Printf("写入引导标记文件失败: %v", err)
	}
}

// ensureWelcomeNote 首次使用时创建欢迎笔记
// 欢迎笔记走正常创建路径，和普通笔记没有任何区别；
// 用户已有笔记时只补标记，不再创建
func (s *StateStore) ensureWelcomeNote(userKey string) {
	if s.flags == nil {
		return
	}

	s.mu.Lock()
	hasNotes := len(s.state.Notes) > 0 || len(s.state.Trash) > 0
	s.mu.Unlock()

	if hasNotes {
		if !s.flags.Seen(userKey) {
			s.flags.MarkSeen(userKey)
		}
		return
	}

	if s.flags.Seen(userKey) {
		return
	}

	if _, err := s.AddNote(welcomeNoteTitle, welcomeNoteContent); err != nil {
		log.Printf("创建欢迎笔记失败: %v", err)
		return
	}
	s.flags.MarkSeen(userKey)
}
