package Client

import (
	"log"
	"strings"
	"sync"
	"time"

	"panote/database"
)

// AppState 客户端应用状态：四个集合加当前选中项
// 一条笔记在任意时刻只属于 Notes 或 Trash 之一
type AppState struct {
	Notes         []database.Note
	Trash         []database.Note
	Tags          []database.Tag
	Messages      []database.ChatMessage
	CurrentNoteID string
}

// reconcile 本地状态与远端权威状态的合并策略
// 当前策略：丢弃本地，整体采用远端
func reconcile(local, remote AppState) AppState {
	remote.CurrentNoteID = local.CurrentNoteID
	return remote
}

// aiFailureMessage AI不可用时以助手气泡形式展示的提示语
const aiFailureMessage = "Sorry, I'm having trouble connecting right now."

// StateStore 客户端状态仓库
// 每个变更意图先同步应用到内存（乐观更新），再异步发请求；
// 请求失败时不做字段级回滚，而是整体重新拉取四个集合。
// 并发的写请求之间不保证顺序，最后完成的响应生效。
type StateStore struct {
	mu    sync.Mutex
	api   ApiInterface
	flags *OnboardingFlags
	state AppState

	wg sync.WaitGroup
}

func NewStateStore(api ApiInterface, flags *OnboardingFlags) *StateStore {
	return &StateStore{
		api:   api,
		flags: flags,
	}
}

// Load 初始加载：拉取全部集合，并在首次使用时生成欢迎笔记
func (s *StateStore) Load(userKey string) error {
	if err := s.Resync(); err != nil {
		return err
	}
	s.ensureWelcomeNote(userKey)
	return nil
}

// Resync 整体重新拉取：失败路径上的一致性恢复手段
func (s *StateStore) Resync() error {
	notes, err := s.api.FetchNotes()
	if err != nil {
		return err
	}
	trash, err := s.api.FetchTrash()
	if err != nil {
		return err
	}
	tags, err := s.api.FetchTags()
	if err != nil {
		return err
	}
	messages, err := s.api.FetchMessages()
	if err != nil {
		return err
	}

	remote := AppState{
		Notes:    notes,
		Trash:    trash,
		Tags:     tags,
		Messages: messages,
	}

	s.mu.Lock()
	s.state = reconcile(s.state, remote)
	s.mu.Unlock()
	return nil
}

// Snapshot 返回当前状态的副本
func (s *StateStore) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.Notes = append([]database.Note(nil), s.state.Notes...)
	snapshot.Trash = append([]database.Note(nil), s.state.Trash...)
	snapshot.Tags = append([]database.Tag(nil), s.state.Tags...)
	snapshot.Messages = append([]database.ChatMessage(nil), s.state.Messages...)
	return snapshot
}

// Flush 等待所有在途请求完成，用于退出前收尾和测试
func (s *StateStore) Flush() {
	s.wg.Wait()
}

// dispatch 异步发出请求，失败时整体重新同步
// 不阻塞调用方，也不中止已发出的请求
func (s *StateStore) dispatch(call func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := call(); err != nil {
			log.Printf("同步失败，重新拉取全部数据: %v", err)
			if rerr := s.Resync(); rerr != nil {
				log.Printf("重新同步失败: %v", rerr)
			}
		}
	}()
}

// SelectNote 选中笔记
func (s *StateStore) SelectNote(id string) {
	s.mu.Lock()
	s.state.CurrentNoteID = id
	s.mu.Unlock()
}

// AddNote 创建笔记并选中
// 创建走同步请求：新笔记的ID由服务端生成，本地无法预先构造
func (s *StateStore) AddNote(title, content string) (*database.Note, error) {
	note, err := s.api.CreateNote(title, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Notes = append([]database.Note{*note}, s.state.Notes...)
	s.state.CurrentNoteID = note.ID
	s.mu.Unlock()
	return note, nil
}

// PinNote 切换置顶状态
// 乐观翻转立即生效，与网络延迟无关
func (s *StateStore) PinNote(id string) {
	var pinned bool
	var found bool

	s.mu.Lock()
	for i := range s.state.Notes {
		if s.state.Notes[i].ID == id {
			s.state.Notes[i].IsPinned = !s.state.Notes[i].IsPinned
			pinned = s.state.Notes[i].IsPinned
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return
	}
	s.dispatch(func() error {
		return s.api.UpdateNote(id, map[string]interface{}{"is_pinned": pinned})
	})
}

// UpdateNote 更新笔记内容和标签引用
// 笔记可能在活动集合或回收站，两处都查
func (s *StateStore) UpdateNote(id, title, content string, tagID *string) {
	s.mu.Lock()
	found := false
	for i := range s.state.Notes {
		if s.state.Notes[i].ID == id {
			s.state.Notes[i].Title = title
			s.state.Notes[i].Content = content
			s.state.Notes[i].TagID = tagID
			found = true
			break
		}
	}
	if !found {
		for i := range s.state.Trash {
			if s.state.Trash[i].ID == id {
				s.state.Trash[i].Title = title
				s.state.Trash[i].Content = content
				s.state.Trash[i].TagID = tagID
				found = true
				break
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return
	}
	s.dispatch(func() error {
		return s.api.UpdateNote(id, map[string]interface{}{
			"title":   title,
			"content": content,
			"tag_id":  tagID,
		})
	})
}

// MoveToTrash 移入回收站
// 从活动集合移除和加入回收站在同一个临界区内完成，
// 不存在笔记两边都在或两边都不在的中间状态
func (s *StateStore) MoveToTrash(id string) {
	s.mu.Lock()
	var moved *database.Note
	for i := range s.state.Notes {
		if s.state.Notes[i].ID == id {
			note := s.state.Notes[i]
			s.state.Notes = append(s.state.Notes[:i], s.state.Notes[i+1:]...)
			now := time.Now()
			note.IsDeleted = true
			note.DeletedNoteAt = &now
			s.state.Trash = append([]database.Note{note}, s.state.Trash...)
			moved = &note
			break
		}
	}
	if moved != nil && s.state.CurrentNoteID == id {
		s.state.CurrentNoteID = ""
	}
	s.mu.Unlock()

	if moved == nil {
		return
	}
	s.dispatch(func() error {
		return s.api.TrashNote(id)
	})
}

// RestoreFromTrash 从回收站恢复
func (s *StateStore) RestoreFromTrash(id string) {
	s.mu.Lock()
	var restored *database.Note
	for i := range s.state.Trash {
		if s.state.Trash[i].ID == id {
			note := s.state.Trash[i]
			s.state.Trash = append(s.state.Trash[:i], s.state.Trash[i+1:]...)
			note.IsDeleted = false
			note.DeletedNoteAt = nil
			s.state.Notes = append([]database.Note{note}, s.state.Notes...)
			restored = &note
			break
		}
	}
	if restored != nil && s.state.CurrentNoteID == id {
		s.state.CurrentNoteID = ""
	}
	s.mu.Unlock()

	if restored == nil {
		return
	}
	s.dispatch(func() error {
		return s.api.RestoreNote(id)
	})
}

// DeleteForever 彻底删除回收站中的笔记
func (s *StateStore) DeleteForever(id string) {
	s.mu.Lock()
	found := false
	for i := range s.state.Trash {
		if s.state.Trash[i].ID == id {
			s.state.Trash = append(s.state.Trash[:i], s.state.Trash[i+1:]...)
			found = true
			break
		}
	}
	if found && s.state.CurrentNoteID == id {
		s.state.CurrentNoteID = ""
	}
	s.mu.Unlock()

	if !found {
		return
	}
	s.dispatch(func() error {
		return s.api.PurgeNote(id)
	})
}

// AddTag 为当前笔记添加标签
// 同名标签（忽略大小写）直接复用，不重复创建
func (s *StateStore) AddTag(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	currentID := s.state.CurrentNoteID
	var existing *database.Tag
	for i := range s.state.Tags {
		if strings.EqualFold(s.state.Tags[i].Name, name) {
			existing = &s.state.Tags[i]
			break
		}
	}
	s.mu.Unlock()

	var tag *database.Tag
	if existing != nil {
		tag = existing
	} else {
		created, err := s.api.CreateTag(name)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Tags = append(s.state.Tags, *created)
		s.mu.Unlock()
		tag = created
	}

	if currentID != "" {
		s.assignTag(currentID, &tag.ID)
	}
	return nil
}

// RemoveTagFromNote 清除当前笔记的标签引用
func (s *StateStore) RemoveTagFromNote() {
	s.mu.Lock()
	currentID := s.state.CurrentNoteID
	s.mu.Unlock()

	if currentID != "" {
		s.assignTag(currentID, nil)
	}
}

// assignTag 设置或清除笔记的标签引用
func (s *StateStore) assignTag(noteID string, tagID *string) {
	s.mu.Lock()
	for i := range s.state.Notes {
		if s.state.Notes[i].ID == noteID {
			s.state.Notes[i].TagID = tagID
			break
		}
	}
	s.mu.Unlock()

	s.dispatch(func() error {
		return s.api.UpdateNote(noteID, map[string]interface{}{"tag_id": tagID})
	})
}

// DeleteTag 删除标签
// 乐观地同时清掉活动笔记和回收站里对该标签的引用，笔记本身保留
func (s *StateStore) DeleteTag(id string) {
	s.mu.Lock()
	for i := range s.state.Tags {
		if s.state.Tags[i].ID == id {
			s.state.Tags = append(s.state.Tags[:i], s.state.Tags[i+1:]...)
			break
		}
	}
	for i := range s.state.Notes {
		if s.state.Notes[i].TagID != nil && *s.state.Notes[i].TagID == id {
			s.state.Notes[i].TagID = nil
		}
	}
	for i := range s.state.Trash {
		if s.state.Trash[i].TagID != nil && *s.state.Trash[i].TagID == id {
			s.state.Trash[i].TagID = nil
		}
	}
	s.mu.Unlock()

	s.dispatch(func() error {
		return s.api.DeleteTag(id)
	})
}

// SendChatMessage 发送聊天消息并获取AI回复
// 用户气泡先乐观上屏；AI失败时以助手气泡展示提示语，不弹错误
func (s *StateStore) SendChatMessage(content string, attachments []string) {
	if content == "" && len(attachments) == 0 {
		return
	}

	userMessage := database.ChatMessage{
		Role:        "user",
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.state.Messages = append(s.state.Messages, userMessage)
	turns := make([]database.ChatTurn, 0, len(s.state.Messages))
	for _, m := range s.state.Messages {
		turns = append(turns, database.ChatTurn{Role: m.Role, Content: m.Content})
	}
	s.mu.Unlock()

	// 仅持久化非本地附件地址
	persisted := make([]string, 0, len(attachments))
	for _, a := range attachments {
		if !strings.HasPrefix(a, "blob:") {
			persisted = append(persisted, a)
		}
	}
	s.dispatch(func() error {
		return s.api.PostMessage("user", content, persisted)
	})

	reply, err := s.api.RequestChatReply(turns)
	if err != nil {
		log.Printf("AI回复失败: %v", err)
		s.mu.Lock()
		s.state.Messages = append(s.state.Messages, database.ChatMessage{
			Role:      "assistant",
			Content:   aiFailureMessage,
			CreatedAt: time.Now(),
		})
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.state.Messages = append(s.state.Messages, database.ChatMessage{
		Role:      "assistant",
		Content:   reply,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	s.dispatch(func() error {
		return s.api.PostMessage("assistant", reply, nil)
	})
}

// formatToHTML 把纯文本按行转成HTML段落
func formatToHTML(plainText string) string {
	if plainText == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(plainText, "\n") {
		if line == "" {
			b.WriteString("<p><br></p>")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(line)
		b.WriteString("</p>")
	}
	return b.String()
}

// AppendAIReplyToNote 把AI生成的文本写入笔记
// noteID 为 "new" 时新建笔记；为空时写入当前笔记，没有当前笔记则新建
func (s *StateStore) AppendAIReplyToNote(text, noteID string) error {
	formatted := formatToHTML(text)

	if noteID == "new" {
		_, err := s.AddNote("New Note", formatted)
		return err
	}

	s.mu.Lock()
	targetID := noteID
	if targetID == "" {
		targetID = s.state.CurrentNoteID
	}
	var target *database.Note
	for i := range s.state.Notes {
		if s.state.Notes[i].ID == targetID {
			target = &s.state.Notes[i]
			break
		}
	}
	var title, content string
	var tagID *string
	if target != nil {
		title = target.Title
		content = target.Content + formatted
		tagID = target.TagID
	}
	s.mu.Unlock()

	if target == nil {
		_, err := s.AddNote("New Note", formatted)
		return err
	}

	s.UpdateNote(targetID, title, content, tagID)
	s.SelectNote(targetID)
	return nil
}
