package Client

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"panote/Client"
	"panote/database"

	"github.com/google/uuid"
)

// fakeApi 内存中的假接口实现
// 维护一份"服务端"数据，可以按方法名注入失败
type fakeApi struct {
	mu       sync.Mutex
	notes    []database.Note
	trash    []database.Note
	tags     []database.Tag
	messages []database.ChatMessage

	failures map[string]error
	calls    []string

	chatReply string
	chatErr   error
}

func newFakeApi() *fakeApi {
	return &fakeApi{failures: make(map[string]error)}
}

func (f *fakeApi) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	return f.failures[method]
}

func (f *fakeApi) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.calls {
		if c == method {
			count++
		}
	}
	return count
}

func (f *fakeApi) FetchNotes() ([]database.Note, error) {
	if err := f.record("FetchNotes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.Note(nil), f.notes...), nil
}

func (f *fakeApi) FetchTrash() ([]database.Note, error) {
	if err := f.record("FetchTrash"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.Note(nil), f.trash...), nil
}

func (f *fakeApi) FetchTags() ([]database.Tag, error) {
	if err := f.record("FetchTags"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.Tag(nil), f.tags...), nil
}

func (f *fakeApi) FetchMessages() ([]database.ChatMessage, error) {
	if err := f.record("FetchMessages"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.ChatMessage(nil), f.messages...), nil
}

func (f *fakeApi) CreateNote(title, content string) (*database.Note, error) {
	if err := f.record("CreateNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	note := database.Note{ID: uuid.New().String(), UserID: 1, Title: title, Content: content}
	f.notes = append([]database.Note{note}, f.notes...)
	return &note, nil
}

func (f *fakeApi) UpdateNote(id string, updates map[string]interface{}) error {
	if err := f.record("UpdateNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			if v, ok := updates["is_pinned"].(bool); ok {
				f.notes[i].IsPinned = v
			}
			if v, ok := updates["title"].(string); ok {
				f.notes[i].Title = v
			}
			if v, ok := updates["content"].(string); ok {
				f.notes[i].Content = v
			}
		}
	}
	return nil
}

func (f *fakeApi) TrashNote(id string) error {
	if err := f.record("TrashNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			note := f.notes[i]
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			note.IsDeleted = true
			f.trash = append(f.trash, note)
			break
		}
	}
	return nil
}

func (f *fakeApi) RestoreNote(id string) error {
	if err := f.record("RestoreNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.trash {
		if f.trash[i].ID == id {
			note := f.trash[i]
			f.trash = append(f.trash[:i], f.trash[i+1:]...)
			note.IsDeleted = false
			f.notes = append(f.notes, note)
			break
		}
	}
	return nil
}

func (f *fakeApi) PurgeNote(id string) error {
	if err := f.record("PurgeNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.trash {
		if f.trash[i].ID == id {
			f.trash = append(f.trash[:i], f.trash[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeApi) CreateTag(name string) (*database.Tag, error) {
	if err := f.record("CreateTag"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := database.Tag{ID: uuid.New().String(), UserID: 1, Name: name}
	f.tags = append(f.tags, tag)
	return &tag, nil
}

func (f *fakeApi) DeleteTag(id string) error {
	if err := f.record("DeleteTag"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tags {
		if f.tags[i].ID == id {
			f.tags = append(f.tags[:i], f.tags[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeApi) PostMessage(role, content string, attachments []string) error {
	if err := f.record("PostMessage"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, database.ChatMessage{
		ID: uuid.New().String(), UserID: 1, Role: role, Content: content, Attachments: attachments,
	})
	return nil
}

func (f *fakeApi) RequestChatReply(turns []database.ChatTurn) (string, error) {
	if err := f.record("RequestChatReply"); err != nil {
		return "", err
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatReply, nil
}

// setupStore 创建状态仓库并完成初始加载
func setupStore(t *testing.T, api *fakeApi) *Client.StateStore {
	flags := Client.NewOnboardingFlags(filepath.Join(t.TempDir(), "onboarding.json"))
	store := Client.NewStateStore(api, flags)
	if err := store.Load("user-1"); err != nil {
		t.Fatalf("初始加载失败: %v", err)
	}
	return store
}

// seedNote 在假服务端放入一条笔记
func seedNote(api *fakeApi, id, title string) {
	api.notes = append(api.notes, database.Note{ID: id, UserID: 1, Title: title})
}

// TestPinNoteOptimistic 测试置顶的乐观更新
func TestPinNoteOptimistic(t *testing.T) {
	api := newFakeApi()
	seedNote(api, "note-1", "测试笔记")
	store := setupStore(t, api)

	store.PinNote("note-1")

	// 不等请求完成，本地状态应该已经翻转
	state := store.Snapshot()
	if len(state.Notes) != 1 || !state.Notes[0].IsPinned {
		t.Error("置顶状态应该立即在本地生效")
	}

	store.Flush()

	// 请求完成后服务端同步翻转
	api.mu.Lock()
	serverPinned := api.notes[0].IsPinned
	api.mu.Unlock()
	if !serverPinned {
		t.Error("置顶状态应该同步到服务端")
	}
}

// TestPinNoteFailureResync 测试请求失败后整体重新拉取
func TestPinNoteFailureResync(t *testing.T) {
	api := newFakeApi()
	seedNote(api, "note-1", "测试笔记")
	store := setupStore(t, api)

	// 更新请求失败，本地乐观状态会被服务端状态覆盖
	api.mu.Lock()
	api.failures["UpdateNote"] = errors.New("网络错误")
	api.mu.Unlock()

	store.PinNote("note-1")
	store.Flush()

	state := store.Snapshot()
	if len(state.Notes) != 1 {
		t.Fatalf("笔记数量不匹配: 得到 %d", len(state.Notes))
	}
	if state.Notes[0].IsPinned {
		t.Error("重新拉取后本地状态应该回到服务端的未置顶状态")
	}
	if api.callCount("FetchNotes") < 2 {
		t.Error("请求失败后应该重新拉取全部集合")
	}
}

// TestMoveToTrashAtomic 测试移入回收站的集合迁移
func TestMoveToTrashAtomic(t *testing.T) {
	api := newFakeApi()
	seedNote(api, "note-1", "要删的笔记")
	seedNote(api, "note-2", "留下的笔记")
	store := setupStore(t, api)
	store.SelectNote("note-1")

	store.MoveToTrash("note-1")

	// 本地状态立即迁移：活动集合少一条，回收站多一条，当前选中清空
	state := store.Snapshot()
	if len(state.Notes) != 1 {
		t.Errorf("活动笔记数量不匹配: 得到 %d, 期望 1", len(state.Notes))
	}
	if len(state.Trash) != 1 {
		t.Errorf("回收站数量不匹配: 得到 %d, 期望 1", len(state.Trash))
	}
	if len(state.Trash) == 1 {
		if state.Trash[0].ID != "note-1" {
			t.Errorf("回收站中的笔记不匹配: 得到 %v", state.Trash[0].ID)
		}
		if !state.Trash[0].IsDeleted || state.Trash[0].DeletedNoteAt == nil {
			t.Error("移入回收站的笔记应该有删除标记和删除时间")
		}
	}
	if state.CurrentNoteID != "" {
		t.Error("删除当前选中的笔记后选中状态应该清空")
	}

	store.Flush()

	// 恢复后回到活动集合
	store.RestoreFromTrash("note-1")
	state = store.Snapshot()
	if len(state.Notes) != 2 || len(state.Trash) != 0 {
		t.Errorf("恢复后集合划分不匹配: 活动 %d, 回收站 %d", len(state.Notes), len(state.Trash))
	}
	store.Flush()
}

// TestDeleteForever 测试彻底删除
func TestDeleteForever(t *testing.T) {
	api := newFakeApi()
	api.trash = append(api.trash, database.Note{ID: "trash-1", UserID: 1, Title: "回收站笔记", IsDeleted: true})
	store := setupStore(t, api)

	store.DeleteForever("trash-1")
	store.Flush()

	state := store.Snapshot()
	if len(state.Trash) != 0 {
		t.Errorf("彻底删除后回收站应该为空: 剩余 %d", len(state.Trash))
	}
	if api.callCount("PurgeNote") != 1 {
		t.Error("应该向服务端发起一次彻底删除请求")
	}
}

// TestAddTagReuse 测试标签的大小写不敏感复用
func TestAddTagReuse(t *testing.T) {
	api := newFakeApi()
	api.tags = append(api.tags, database.Tag{ID: "tag-1", UserID: 1, Name: "Work"})
	seedNote(api, "note-1", "笔记")
	store := setupStore(t, api)
	store.SelectNote("note-1")

	// 同名标签（仅大小写不同）不应该发起创建请求
	if err := store.AddTag("work"); err != nil {
		t.Fatalf("AddTag() 意外返回错误: %v", err)
	}
	store.Flush()

	if api.callCount("CreateTag") != 0 {
		t.Error("已有同名标签时不应该创建新标签")
	}

	state := store.Snapshot()
	if len(state.Tags) != 1 {
		t.Errorf("标签数量不匹配: 得到 %d, 期望 1", len(state.Tags))
	}
	if state.Notes[0].TagID == nil || *state.Notes[0].TagID != "tag-1" {
		t.Error("当前笔记应该引用复用的标签")
	}

	// 新名字才创建
	if err := store.AddTag("Life"); err != nil {
		t.Fatalf("AddTag() 意外返回错误: %v", err)
	}
	store.Flush()
	if api.callCount("CreateTag") != 1 {
		t.Error("新名字的标签应该发起一次创建请求")
	}
}

// TestDeleteTagClearsLocalRefs 测试删除标签时本地引用的清理
func TestDeleteTagClearsLocalRefs(t *testing.T) {
	api := newFakeApi()
	tagID := "tag-1"
	api.tags = append(api.tags, database.Tag{ID: tagID, UserID: 1, Name: "Work"})
	api.notes = append(api.notes, database.Note{ID: "note-1", UserID: 1, Title: "活动笔记", TagID: &tagID})
	api.trash = append(api.trash, database.Note{ID: "trash-1", UserID: 1, Title: "回收站笔记", TagID: &tagID, IsDeleted: true})
	store := setupStore(t, api)

	store.DeleteTag(tagID)

	state := store.Snapshot()
	if len(state.Tags) != 0 {
		t.Error("标签应该立即从本地移除")
	}
	if state.Notes[0].TagID != nil {
		t.Error("活动笔记的标签引用应该被清除")
	}
	if state.Trash[0].TagID != nil {
		t.Error("回收站笔记的标签引用也应该被清除")
	}

	store.Flush()
	if api.callCount("DeleteTag") != 1 {
		t.Error("应该向服务端发起一次删除请求")
	}
}

// TestSendChatMessage 测试聊天的正常流程
func TestSendChatMessage(t *testing.T) {
	api := newFakeApi()
	api.chatReply = "你好，我是助手"
	store := setupStore(t, api)

	store.SendChatMessage("你好", nil)
	store.Flush()

	state := store.Snapshot()
	if len(state.Messages) != 2 {
		t.Fatalf("消息数量不匹配: 得到 %d, 期望 2", len(state.Messages))
	}
	if state.Messages[0].Role != "user" || state.Messages[0].Content != "你好" {
		t.Errorf("第一条应该是用户消息: 得到 %v / %v", state.Messages[0].Role, state.Messages[0].Content)
	}
	if state.Messages[1].Role != "assistant" || state.Messages[1].Content != "你好，我是助手" {
		t.Errorf("第二条应该是助手回复: 得到 %v / %v", state.Messages[1].Role, state.Messages[1].Content)
	}

	// 用户消息和助手回复各持久化一次
	if api.callCount("PostMessage") != 2 {
		t.Errorf("应该持久化两条消息: 实际 %d 次", api.callCount("PostMessage"))
	}
}

// TestSendChatMessageAIFailure 测试AI失败时的降级表现
func TestSendChatMessageAIFailure(t *testing.T) {
	api := newFakeApi()
	api.chatErr = errors.New("所有候选模型均调用失败")
	store := setupStore(t, api)

	store.SendChatMessage("你好", nil)
	store.Flush()

	state := store.Snapshot()
	if len(state.Messages) != 2 {
		t.Fatalf("消息数量不匹配: 得到 %d, 期望 2", len(state.Messages))
	}
	// 用户气泡保留，失败以助手气泡的形式呈现
	if state.Messages[0].Role != "user" {
		t.Error("用户消息应该保留在界面上")
	}
	if state.Messages[1].Role != "assistant" {
		t.Error("失败提示应该以助手气泡呈现")
	}
	if state.Messages[1].Content != "Sorry, I'm having trouble connecting right now." {
		t.Errorf("失败提示文案不匹配: 得到 %v", state.Messages[1].Content)
	}

	// 失败的回复不持久化，只有用户消息落库
	if api.callCount("PostMessage") != 1 {
		t.Errorf("只应该持久化用户消息: 实际 %d 次", api.callCount("PostMessage"))
	}
}

// TestWelcomeNoteOnce 测试欢迎笔记只创建一次
func TestWelcomeNoteOnce(t *testing.T) {
	api := newFakeApi()
	flagPath := filepath.Join(t.TempDir(), "onboarding.json")

	// 首次加载：没有任何笔记，创建欢迎笔记
	store := Client.NewStateStore(api, Client.NewOnboardingFlags(flagPath))
	if err := store.Load("user-1"); err != nil {
		t.Fatalf("初始加载失败: %v", err)
	}

	state := store.Snapshot()
	if len(state.Notes) != 1 {
		t.Fatalf("首次加载应该创建欢迎笔记: 得到 %d 条", len(state.Notes))
	}
	if api.callCount("CreateNote") != 1 {
		t.Errorf("欢迎笔记应该走正常创建路径: 创建了 %d 次", api.callCount("CreateNote"))
	}

	// 再次加载：标记已存在，不再创建
	store2 := Client.NewStateStore(api, Client.NewOnboardingFlags(flagPath))
	if err := store2.Load("user-1"); err != nil {
		t.Fatalf("二次加载失败: %v", err)
	}
	if api.callCount("CreateNote") != 1 {
		t.Errorf("欢迎笔记不应该重复创建: 创建了 %d 次", api.callCount("CreateNote"))
	}

	// 用户删光所有笔记后也不再创建
	api.mu.Lock()
	api.notes = nil
	api.mu.Unlock()
	store3 := Client.NewStateStore(api, Client.NewOnboardingFlags(flagPath))
	if err := store3.Load("user-1"); err != nil {
		t.Fatalf("三次加载失败: %v", err)
	}
	if api.callCount("CreateNote") != 1 {
		t.Errorf("删光笔记后不应该再创建欢迎笔记: 创建了 %d 次", api.callCount("CreateNote"))
	}
}

// TestWelcomeNoteSkippedForExistingUser 测试已有笔记的用户不创建欢迎笔记
func TestWelcomeNoteSkippedForExistingUser(t *testing.T) {
	api := newFakeApi()
	seedNote(api, "note-1", "已有的笔记")

	store := Client.NewStateStore(api, Client.NewOnboardingFlags(filepath.Join(t.TempDir(), "onboarding.json")))
	if err := store.Load("user-1"); err != nil {
		t.Fatalf("初始加载失败: %v", err)
	}

	if api.callCount("CreateNote") != 0 {
		t.Error("已有笔记的用户不应该创建欢迎笔记")
	}
}

// TestAppendAIReplyToNote 测试AI回复写入笔记
func TestAppendAIReplyToNote(t *testing.T) {
	api := newFakeApi()
	seedNote(api, "note-1", "目标笔记")
	store := setupStore(t, api)

	// 写入指定笔记：纯文本按行转成段落并追加
	if err := store.AppendAIReplyToNote("第一行\n第二行", "note-1"); err != nil {
		t.Fatalf("AppendAIReplyToNote() 意外返回错误: %v", err)
	}
	store.Flush()

	state := store.Snapshot()
	if state.Notes[0].Content != "<p>第一行</p><p>第二行</p>" {
		t.Errorf("写入内容不匹配: 得到 %v", state.Notes[0].Content)
	}
	if state.CurrentNoteID != "note-1" {
		t.Error("写入后应该选中目标笔记")
	}

	// noteID 为 "new" 时新建
	if err := store.AppendAIReplyToNote("新内容", "new"); err != nil {
		t.Fatalf("AppendAIReplyToNote() 意外返回错误: %v", err)
	}
	store.Flush()

	state = store.Snapshot()
	if len(state.Notes) != 2 {
		t.Errorf("应该新建一条笔记: 得到 %d 条", len(state.Notes))
	}
	if state.Notes[0].Content != "<p>新内容</p>" {
		t.Errorf("新建笔记内容不匹配: 得到 %v", state.Notes[0].Content)
	}
}
