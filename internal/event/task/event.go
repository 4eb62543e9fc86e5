package task

// EventName 发送任务事件的主题名。
// 事件体就是 domain.SendTask 的 JSON 序列化，提交侧写入，调度侧消费。
const EventName = "send_task_events"
