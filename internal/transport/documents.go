package transport

// GraphQL operation documents. Fragments are spelled once and spliced into
// each operation, so every result decodes into the same wire shapes.

const userDetails = `
fragment UserDetails on User {
  id
  username
}`

const messageDetails = userDetails + `
fragment MessageDetails on Message {
  id
  text
  time
  forwarded
  chatId
  user {
    ...UserDetails
  }
  reply {
    id
    text
    user {
      ...UserDetails
    }
  }
}`

const chatDetails = messageDetails + `
fragment ChatDetails on Chat {
  id
  name
  admin {
    ...UserDetails
  }
  users {
    ...UserDetails
  }
  message {
    ...MessageDetails
  }
}`

const findUserQuery = userDetails + `
query findUser {
  findUser {
    ...UserDetails
  }
}`

const findUsersQuery = userDetails + `
query findUsers {
  findUsers {
    ...UserDetails
  }
}`

const findChatsQuery = chatDetails + `
query findChats {
  findChats {
    ...ChatDetails
    messages {
      ...MessageDetails
    }
  }
}`

const loginMutation = `
mutation login($username: String!, $password: String!) {
  login(username: $username, password: $password)
}`

const createUserMutation = userDetails + `
mutation createUser($username: String!, $password: String!) {
  createUser(username: $username, password: $password) {
    ...UserDetails
  }
}`

const updateUserMutation = userDetails + `
mutation updateUser($username: String!, $password: String!) {
  updateUser(username: $username, password: $password) {
    ...UserDetails
  }
}`

const deleteUserMutation = userDetails + `
mutation deleteUser {
  deleteUser {
    ...UserDetails
  }
}`

const createChatMutation = chatDetails + `
mutation createChat($userIds: [ID!]!) {
  createChat(userIds: $userIds) {
    ...ChatDetails
    messages {
      ...MessageDetails
    }
  }
}`

const leaveChatMutation = chatDetails + `
mutation leaveChat($chatId: ID!) {
  leaveChat(chatId: $chatId) {
    ...ChatDetails
  }
}`

const renameChatMutation = chatDetails + `
mutation renameChat($chatId: ID!, $name: String!) {
  renameChat(chatId: $chatId, name: $name) {
    ...ChatDetails
  }
}`

const changeAdminMutation = chatDetails + `
mutation changeAdmin($chatId: ID!, $userId: ID!) {
  changeAdmin(chatId: $chatId, userId: $userId) {
    ...ChatDetails
  }
}`

const addUsersMutation = chatDetails + `
mutation addUsers($chatId: ID!, $userIds: [ID!]!) {
  addUsers(chatId: $chatId, userIds: $userIds) {
    ...ChatDetails
  }
}`

const removeUsersMutation = chatDetails + `
mutation removeUsers($chatId: ID!, $userIds: [ID!]!) {
  removeUsers(chatId: $chatId, userIds: $userIds) {
    ...ChatDetails
  }
}`

const deleteChatMutation = chatDetails + `
mutation deleteChat($chatId: ID!) {
  deleteChat(chatId: $chatId) {
    ...ChatDetails
  }
}`

const createMessageMutation = messageDetails + `
mutation createMessage($text: String!, $chatId: ID!, $forwarded: Boolean, $notification: Boolean, $socketId: String, $messageId: ID) {
  createMessage(text: $text, chatId: $chatId, forwarded: $forwarded, notification: $notification, socketId: $socketId, messageId: $messageId) {
    ...MessageDetails
  }
}`

const updateMessageMutation = messageDetails + `
mutation updateMessage($messageId: ID!, $text: String!) {
  updateMessage(messageId: $messageId, text: $text) {
    ...MessageDetails
  }
}`

const deleteMessageMutation = messageDetails + `
mutation deleteMessage($messageId: ID!) {
  deleteMessage(messageId: $messageId) {
    ...MessageDetails
  }
}`
